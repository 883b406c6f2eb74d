package ipc

import (
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/matjam/deskpaper"
)

// GET /status
func statusHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, StatusResponse{
			Status:    "ok",
			Message:   "deskpaper is running",
			Version:   strings.Trim(deskpaper.Version, "\n\r "),
			PID:       os.Getpid(),
			Socket:    SocketPath(),
			Wallpaper: m.Status(),
		}, "  ")
	}
}

// POST /refresh
func refreshHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := m.Refresh(); err != nil {
			return c.JSON(http.StatusInternalServerError, Response{Status: "error", Message: err.Error()})
		}
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}

// POST /stop
func stopHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.Stop()
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}
