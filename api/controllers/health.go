package controllers

import (
	"net/http"

	"github.com/greenora/storefront/api/responses"
	"github.com/greenora/storefront/pkg/config"
)

func Healthz(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Greenora-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
