package gateway

import (
	"net/http"

	"github.com/flemzord/chatlist/internal/core"
)

// moduleJSON describes a compiled-in module and the hooks it offers.
type moduleJSON struct {
	ID           string `json:"id"`
	Namespace    string `json:"namespace"`
	Name         string `json:"name"`
	Configurable bool   `json:"configurable"`
	Reloadable   bool   `json:"reloadable"`
}

func compiledModules() []string {
	var ids []string
	for _, info := range core.GetModules() {
		ids = append(ids, string(info.ID))
	}
	return ids
}

func (g *Gateway) handleModules() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		infos := core.GetModules()
		out := make([]moduleJSON, len(infos))
		for i, info := range infos {
			probe := info.New()
			_, configurable := probe.(core.Configurable)
			_, reloadable := probe.(core.Reloader)
			out[i] = moduleJSON{
				ID:           string(info.ID),
				Namespace:    info.ID.Namespace(),
				Name:         info.ID.Name(),
				Configurable: configurable,
				Reloadable:   reloadable,
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleReload re-reads the configuration file. A rejected configuration
// leaves the running one in place and is reported as 422.
func (g *Gateway) handleReload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := g.reloader.Reload(r.Context()); err != nil {
			g.logger.Warn("reload via API rejected", "error", err)
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
	}
}
