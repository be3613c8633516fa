package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskboard/internal/model"
	"taskboard/internal/project"
)

type projectDetail struct {
	Project model.Project        `json:"project"`
	Tasks   []model.ExpandedTask `json:"tasks"`
}

func (s *Server) handleListProjects(c echo.Context) error {
	items, err := s.projects.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetProject(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := s.projects.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	tasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projectDetail{Project: p, Tasks: tasks})
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req project.ProjectInput
	if err := s.readJSON(c, &req); err != nil {
		return err
	}
	p, err := s.projects.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	var req project.ProjectPatch
	if err := s.readJSON(c, &req); err != nil {
		return err
	}
	p, err := s.cascade.UpdateProject(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	found, err := s.cascade.DeleteProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return model.NotFound("project")
	}
	return c.JSON(http.StatusOK, message{Message: "Project deleted"})
}
