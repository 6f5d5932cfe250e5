package main

// Compiled-in modules. conversation.lists and gateway.http register through
// pkg/app.
import (
	_ "github.com/flemzord/chatlist/modules/store/sqlite"
)
