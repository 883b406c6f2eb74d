package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/matjam/deskpaper/internal/decode"
	"github.com/matjam/deskpaper/internal/ipc"
	"github.com/matjam/deskpaper/internal/wallpaper"
	"github.com/matjam/deskpaper/internal/xconn"
	"github.com/pkg/errors"
	"github.com/sevlyar/go-daemon"
	"github.com/spf13/viper"
)

// agent adds shutdown to the wallpaper manager for the IPC server. Closing
// the X connection makes the event loop return.
type agent struct {
	*wallpaper.Manager
	conn *xconn.Conn

	mu     sync.Mutex
	closed bool
}

// Refresh must not touch the connection once it is closed.
func (a *agent) Refresh() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return errors.New("deskpaper is shutting down")
	}
	return a.Manager.Refresh()
}

func (a *agent) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	log.Info("Stopping deskpaper ...")
	a.closed = true
	a.conn.Close()
}

func StartManager(dir string) {
	if _, err := ipc.SendStatus(); err == nil {
		log.Infof("deskpaper is already running, exiting")
		os.Exit(0)
	}

	if viper.GetBool("background") {
		if err := os.MkdirAll(stateDir(), 0755); err != nil {
			log.Fatalf("Failed to create state directory: %v", err)
		}

		cntxt := &daemon.Context{
			PidFileName: filepath.Join(stateDir(), "deskpaper.pid"),
			PidFilePerm: 0644,
			WorkDir:     "/",
			Umask:       027,
		}

		child, err := cntxt.Reborn()
		if err != nil {
			log.Fatalf("Failed to run in background: %v", err)
		}
		if child != nil {
			log.Infof("deskpaper started in background with PID %d", child.Pid)
			return
		}
		defer cntxt.Release()

		setupRotatingLogger()
	}

	log.Infof("StartManager() started in PID: %d", os.Getpid())
	log.Infof("Wallpaper directory: %s", dir)
	log.Infof("Extensions: %v", viper.GetStringSlice("extensions"))

	conn, err := xconn.Dial()
	if err != nil {
		log.Fatalf("Failed to open display: %v", err)
	}

	atoms, err := conn.Atoms()
	if err != nil {
		conn.Close()
		log.Fatalf("Failed to intern atoms: %v", err)
	}

	logger := log.Default().WithPrefix("wallpaper")
	resolver := wallpaper.NewResolver(dir, viper.GetStringSlice("extensions"), decode.File, logger)
	a := &agent{
		Manager: wallpaper.NewManager(conn, atoms, conn.Root(), resolver, logger),
		conn:    conn,
	}

	sockPath := ipc.SocketPath()
	server := ipc.NewServer(a)
	go func() {
		log.Infof("Starting socket server on %s", sockPath)
		if err := ipc.Start(server, sockPath); err != nil {
			log.Errorf("Socket server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("Received %v", sig)
		a.Stop()
	}()

	runErr := a.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warnf("Socket server shutdown: %v", err)
	}
	os.Remove(sockPath)

	if runErr != nil {
		log.Fatalf("Wallpaper manager failed: %v", runErr)
	}
	log.Infof("deskpaper exited")
}

func stateDir() string {
	home := os.Getenv("HOME")
	return filepath.Join(home, ".local", "share", "deskpaper")
}

func setupRotatingLogger() {
	logPath := filepath.Join(stateDir(), "deskpaper.log")

	writer, err := rotatelogs.New(
		logPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationSize(10*1024*1024),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Fatalf("failed to configure log rotation: %v", err)
	}

	log.SetOutput(writer)
	if !viper.GetBool("debug") {
		log.SetLevel(log.InfoLevel)
	}
}
