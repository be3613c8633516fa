package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskboard/internal/model"
	"taskboard/internal/task"
)

type reorderRequest struct {
	Updates []task.ReorderItem `json:"updates"`
}

func (s *Server) handleListTasks(c echo.Context) error {
	f := task.Filter{
		ProjectID:  c.QueryParam("projectId"),
		CategoryID: c.QueryParam("categoryId"),
		TagID:      c.QueryParam("tagId"),
		Status:     c.QueryParam("status"),
		Priority:   c.QueryParam("priority"),
		AssigneeID: c.QueryParam("assigneeId"),
		Search:     c.QueryParam("search"),
	}
	items, err := s.tasks.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleListProjectTasks(c echo.Context) error {
	items, err := s.tasks.ListByProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetTask(c echo.Context) error {
	t, err := s.tasks.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req task.Input
	if err := s.readJSON(c, &req); err != nil {
		return err
	}
	t, err := s.tasks.Create(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	var req task.Patch
	if err := s.readJSON(c, &req); err != nil {
		return err
	}
	t, err := s.tasks.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	found, err := s.tasks.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return model.NotFound("task")
	}
	return c.JSON(http.StatusOK, message{Message: "Task deleted"})
}

func (s *Server) handleReorderTasks(c echo.Context) error {
	var req reorderRequest
	if err := s.readJSON(c, &req); err != nil {
		return err
	}
	items, err := s.tasks.Reorder(c.Request().Context(), c.Param("id"), req.Updates)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
