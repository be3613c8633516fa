package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskboard/internal/model"
	"taskboard/internal/registry"
)

func (s *Server) handleListUsers(c echo.Context) error {
	items, err := s.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetUser(c echo.Context) error {
	u, err := s.users.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) handleCreateUser(c echo.Context) error {
	var req registry.UserInput
	if err := s.readJSON(c, &req); err != nil {
		return err
	}
	u, err := s.users.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

func (s *Server) handleUpdateUser(c echo.Context) error {
	var req registry.UserPatch
	if err := s.readJSON(c, &req); err != nil {
		return err
	}
	u, err := s.users.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) handleDeleteUser(c echo.Context) error {
	found, err := s.cascade.DeleteUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return model.NotFound("user")
	}
	return c.JSON(http.StatusOK, message{Message: "User deleted"})
}
