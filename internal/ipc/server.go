package ipc

import (
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/matjam/deskpaper/internal/middleware"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// SocketPath returns the configured socket, defaulting to
// $XDG_RUNTIME_DIR/deskpaper.sock.
func SocketPath() string {
	if path := viper.GetString("socket"); path != "" {
		return path
	}
	sockDir := os.Getenv("XDG_RUNTIME_DIR")
	if sockDir == "" {
		sockDir = os.TempDir()
	}
	return filepath.Join(sockDir, "deskpaper.sock")
}

func NewServer(manager ManagerInterface) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.CharmLog())

	RegisterRoutes(e, manager)
	return e
}

// Start serves e on the unix socket at sockPath until e is shut down.
func Start(e *echo.Echo, sockPath string) error {
	if _, err := os.Stat(sockPath); err == nil {
		_ = os.Remove(sockPath)
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return errors.Wrap(err, "listen on socket")
	}
	e.Listener = listener

	server := new(http.Server)
	if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
