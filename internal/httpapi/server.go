// Package httpapi exposes the front desk service over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FrontDesk is the service surface served by the API; *frontdesk.Service implements it.
type FrontDesk interface {
	PerformCheckIn(ctx context.Context, reservationID frontdesk.ReservationID) frontdesk.TransitionResult
	PerformCheckOut(ctx context.Context, reservationID frontdesk.ReservationID) frontdesk.TransitionResult
	GetRoom(ctx context.Context, roomID frontdesk.RoomID) (frontdesk.Room, error)
	ListRooms(ctx context.Context) ([]frontdesk.Room, error)
	CreateRoom(ctx context.Context, input frontdesk.RoomInput) (frontdesk.Room, error)
	UpdateRoom(ctx context.Context, roomID frontdesk.RoomID, update frontdesk.RoomUpdate) (frontdesk.Room, error)
	DeleteRoom(ctx context.Context, roomID frontdesk.RoomID) error
	SetRoomMaintenance(ctx context.Context, roomID frontdesk.RoomID, enabled bool) (frontdesk.Room, error)
	GetReservation(ctx context.Context, reservationID frontdesk.ReservationID) (frontdesk.Reservation, error)
	ListReservations(ctx context.Context, filter frontdesk.ReservationFilter) ([]frontdesk.Reservation, error)
	CreateReservation(ctx context.Context, input frontdesk.ReservationInput) (frontdesk.Reservation, error)
	RecordPayment(ctx context.Context, reservationID frontdesk.ReservationID, amount frontdesk.AmountCents) (frontdesk.Reservation, error)
	CancelReservation(ctx context.Context, reservationID frontdesk.ReservationID) (frontdesk.Reservation, error)
	DeleteReservation(ctx context.Context, reservationID frontdesk.ReservationID) error
}

// Run serves the API until ctx is cancelled.
func Run(ctx context.Context, cfg Config, service FrontDesk, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewRouter(cfg, service, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("frontdesk api listening", zap.String("addr", cfg.ListenAddr), zap.Bool("auth", cfg.AuthEnabled()))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// NewRouter wires middleware and routes. cfg is expected to be validated.
func NewRouter(cfg Config, service FrontDesk, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := &httpHandler{logger: logger, service: service, cfg: cfg}

	api := router.Group("/api")
	if cfg.AuthEnabled() {
		api.Use(newBearerValidator(cfg.JWTSigningKey, cfg.JWTIssuer).GinMiddleware(claimsContextKey))
	}

	api.GET("/rooms", handler.handleListRooms)
	api.POST("/rooms", handler.handleCreateRoom)
	api.GET("/rooms/:id", handler.handleGetRoom)
	api.PATCH("/rooms/:id", handler.handleUpdateRoom)
	api.DELETE("/rooms/:id", handler.handleDeleteRoom)
	api.POST("/rooms/:id/maintenance", handler.handleRoomMaintenance)

	api.GET("/reservations", handler.handleListReservations)
	api.POST("/reservations", handler.handleCreateReservation)
	api.GET("/reservations/:id", handler.handleGetReservation)
	api.DELETE("/reservations/:id", handler.handleDeleteReservation)
	api.POST("/reservations/:id/payments", handler.handleRecordPayment)
	api.POST("/reservations/:id/cancel", handler.handleCancelReservation)
	api.POST("/reservations/:id/check-in", handler.handleCheckIn)
	api.POST("/reservations/:id/check-out", handler.handleCheckOut)

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		started := time.Now()
		ctx.Next()
		fields := []zap.Field{
			zap.String("method", ctx.Request.Method),
			zap.String("route", ctx.FullPath()),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
		}
		if claims := getClaims(ctx); claims != nil {
			fields = append(fields, zap.String("subject", claims.Subject))
		}
		logger.Info("http request", fields...)
	}
}
