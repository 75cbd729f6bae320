package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	logger "github.com/beka-birhanu/vinom-common/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/beka-birhanu/cheese-chase-server/api"
	"github.com/beka-birhanu/cheese-chase-server/config"
	"github.com/beka-birhanu/cheese-chase-server/game"
	"github.com/beka-birhanu/cheese-chase-server/service"
)

// Global variables for dependencies
var (
	gameListener net.Listener
	grpcListener net.Listener
	grpcServer   *grpc.Server
	healthServer *health.Server
	httpServer   *http.Server
	world        *game.World
	gameServer   *service.Server
	appLogger    general_i.Logger
)

func newLogger(prefix, color string) general_i.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func initWorld() {
	cfg := game.DefaultConfig()
	cfg.WinThreshold = config.Envs.WinThreshold

	w, err := game.NewWorld(cfg)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating world: %v", err))
		os.Exit(1)
	}
	world = w
	appLogger.Info(fmt.Sprintf("World initialized: %dx%d field", cfg.Width, cfg.Height))
}

func initGameServer() {
	server, err := service.NewServer(
		&service.Config{
			World:         world,
			Logger:        newLogger("GAME-SERVER", config.ColorCyan),
			LobbyLogger:   newLogger("LOBBY", config.ColorBlue),
			SessionLogger: newLogger("SESSION", config.ColorYellow),
			TickInterval:  config.Envs.TickInterval(),
			SendQueueSize: config.Envs.SendQueueSize,
			WriteTimeout:  config.Envs.WriteTimeout(),
		},
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game server: %v", err))
		os.Exit(1)
	}
	gameServer = server
	appLogger.Info("Game server initialized")
}

func initAdminController() {
	grpcServer = grpc.NewServer()
	if err := api.RegisterNewLobbyAdmin(grpcServer, gameServer.Lobby()); err != nil {
		appLogger.Error(fmt.Sprintf("Creating and Registering lobby admin controller: %v", err))
		os.Exit(1)
	}

	healthServer = health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	appLogger.Info("Admin controller initialized")
}

func initGateway() {
	router := api.NewRouter(&api.RouterConfig{
		GameServer:   gameServer,
		Lobby:        gameServer.Lobby(),
		WriteTimeout: config.Envs.WriteTimeout(),
		Logger:       newLogger("GATEWAY", config.ColorPurple),
	})
	httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	appLogger.Info("Gateway initialized")
}

func listen(port int) net.Listener {
	addr := fmt.Sprintf("%s:%v", config.Envs.HostIP, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Listening tcp: %v", err))
		os.Exit(1)
	}
	return ln
}

func main() {
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	initWorld()
	initGameServer()
	initAdminController()
	initGateway()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameListener = listen(config.Envs.TCPPort)
	grpcListener = listen(config.Envs.GrpcPort)

	gameServer.Start(ctx)
	go func() {
		if err := gameServer.Serve(gameListener); err != nil {
			appLogger.Error(fmt.Sprintf("Serving game clients: %v", err))
		}
	}()
	appLogger.Info(fmt.Sprintf("Serving game clients at: %s", gameListener.Addr()))

	go func() {
		if err := grpcServer.Serve(grpcListener); err != nil {
			appLogger.Error(fmt.Sprintf("Serving gRPC: %v", err))
		}
	}()
	appLogger.Info(fmt.Sprintf("Serving gRPC at: %s", grpcListener.Addr()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(fmt.Sprintf("Serving HTTP: %v", err))
		}
	}()
	appLogger.Info(fmt.Sprintf("Serving WebSocket gateway at: %s", httpServer.Addr))

	<-ctx.Done()
	appLogger.Info("Shutting down")

	healthServer.Shutdown()
	gameServer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Warning(fmt.Sprintf("Shutting down HTTP: %v", err))
	}
	grpcServer.GracefulStop()
}
