package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskboard/internal/model"
	"taskboard/internal/registry"
)

func (s *Server) handleListCategories(c echo.Context) error {
	items, err := s.categories.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleCreateCategory(c echo.Context) error {
	var req registry.CategoryInput
	if err := s.readJSON(c, &req); err != nil {
		return err
	}
	cat, err := s.categories.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

func (s *Server) handleUpdateCategory(c echo.Context) error {
	var req registry.CategoryPatch
	if err := s.readJSON(c, &req); err != nil {
		return err
	}
	cat, err := s.categories.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

func (s *Server) handleDeleteCategory(c echo.Context) error {
	found, err := s.cascade.DeleteCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return model.NotFound("category")
	}
	return c.JSON(http.StatusOK, message{Message: "Category deleted"})
}
