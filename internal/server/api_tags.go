package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskboard/internal/model"
	"taskboard/internal/registry"
)

func (s *Server) handleListTags(c echo.Context) error {
	items, err := s.tags.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleCreateTag(c echo.Context) error {
	var req registry.TagInput
	if err := s.readJSON(c, &req); err != nil {
		return err
	}
	tag, err := s.tags.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}

func (s *Server) handleUpdateTag(c echo.Context) error {
	var req registry.TagPatch
	if err := s.readJSON(c, &req); err != nil {
		return err
	}
	tag, err := s.tags.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

func (s *Server) handleDeleteTag(c echo.Context) error {
	found, err := s.cascade.DeleteTag(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return model.NotFound("tag")
	}
	return c.JSON(http.StatusOK, message{Message: "Tag deleted"})
}
