package sqlite

import (
	"fmt"
	"net/http"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"

	"github.com/banshee-data/pointcloud.recorder/internal/httputil"
)

// AttachAdminRoutes mounts live SQL debugging and a catalog summary on the
// tsweb debug page of mux.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Export catalog",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	catalog := NewCatalog(db.DB)
	debug.Handle("export-catalog", "Export counts by status", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counts, err := catalog.CountByStatus()
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, counts)
	}))
	return nil
}
