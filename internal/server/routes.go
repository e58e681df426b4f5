package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zeppplayer/zeppplayer/internal/buildinfo"
	"github.com/zeppplayer/zeppplayer/internal/projects"
)

// VersionResponse is returned by GET /api/version.
type VersionResponse struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit"`
	BuildDate  string `json:"buildDate"`
}

// ProjectsResponse is returned by GET /api/projects.
type ProjectsResponse struct {
	Projects []projects.Project `json:"projects"`
}

func (s *Server) registerRoutes() {
	api := s.echo.Group("/api")
	api.GET("/version", s.handleVersion)
	api.GET("/projects", s.handleProjects)

	// The bundled tree under the install root already covers /projects in
	// portable mode.
	if !s.layout.IsPortable() {
		s.echo.Static("/projects", s.layout.ProjectsDir)
	}
	s.echo.Static("/", s.layout.Root)
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, VersionResponse{
		Version:    buildinfo.Version,
		CommitHash: buildinfo.CommitHash,
		BuildDate:  buildinfo.BuildDate,
	})
}

func (s *Server) handleProjects(c echo.Context) error {
	list := []projects.Project{}
	if s.index != nil {
		list = append(list, s.index.List()...)
	}
	return c.JSON(http.StatusOK, ProjectsResponse{Projects: list})
}
