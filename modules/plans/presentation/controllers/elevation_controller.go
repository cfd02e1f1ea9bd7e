package controllers

import (
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/irrigodev/irrigationdesign/pkg/application"
	"github.com/irrigodev/irrigationdesign/pkg/configuration"
	"github.com/irrigodev/irrigationdesign/pkg/httpapi"
)

// ElevationController is a thin pass-through to the configured terrain
// elevation provider, so browser clients never talk to it directly.
type ElevationController struct {
	upstream string
	client   *http.Client
	authMW   mux.MiddlewareFunc
	logger   *logrus.Logger
}

func NewElevationController(conf *configuration.Configuration, authMW mux.MiddlewareFunc, logger *logrus.Logger) application.Controller {
	return &ElevationController{
		upstream: conf.Elevation.UpstreamURL,
		client:   &http.Client{Timeout: conf.Elevation.Timeout},
		authMW:   authMW,
		logger:   logger,
	}
}

func (c *ElevationController) Key() string {
	return "/api/elevation"
}

func (c *ElevationController) Register(r *mux.Router) {
	s := r.PathPrefix("/api/elevation").Subrouter()
	s.Use(c.authMW)
	s.HandleFunc("", c.lookup).Methods(http.MethodGet)
}

func (c *ElevationController) lookup(w http.ResponseWriter, r *http.Request) {
	lat := r.URL.Query().Get("lat")
	lng := r.URL.Query().Get("lng")
	if lat == "" || lng == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "lat and lng are required")
		return
	}

	target, err := url.Parse(c.upstream)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "TRANSIENT_FAULT", "elevation provider misconfigured")
		return
	}
	q := target.Query()
	q.Set("lat", lat)
	q.Set("lng", lng)
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "TRANSIENT_FAULT", "elevation lookup failed")
		return
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("elevation upstream unreachable")
		_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "TRANSIENT_FAULT", "elevation lookup failed")
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
