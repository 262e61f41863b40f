package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type httpHandler struct {
	logger  *zap.Logger
	service FrontDesk
	cfg     Config
}

func (handler *httpHandler) requestContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
}

func (handler *httpHandler) handleListRooms(ctx *gin.Context) {
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	rooms, err := handler.service.ListRooms(requestCtx)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]roomPayload, 0, len(rooms))
	for _, room := range rooms {
		payload = append(payload, newRoomPayload(room))
	}
	ctx.JSON(http.StatusOK, gin.H{"rooms": payload})
}

func (handler *httpHandler) handleCreateRoom(ctx *gin.Context) {
	var request createRoomRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	input, err := request.input()
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	room, err := handler.service.CreateRoom(requestCtx, input)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"room": newRoomPayload(room)})
}

func (handler *httpHandler) handleGetRoom(ctx *gin.Context) {
	roomID, ok := handler.roomID(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	room, err := handler.service.GetRoom(requestCtx, roomID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"room": newRoomPayload(room)})
}

func (handler *httpHandler) handleUpdateRoom(ctx *gin.Context) {
	roomID, ok := handler.roomID(ctx)
	if !ok {
		return
	}
	var request updateRoomRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	update, err := request.update()
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	room, err := handler.service.UpdateRoom(requestCtx, roomID, update)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"room": newRoomPayload(room)})
}

func (handler *httpHandler) handleDeleteRoom(ctx *gin.Context) {
	roomID, ok := handler.roomID(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	if err := handler.service.DeleteRoom(requestCtx, roomID); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (handler *httpHandler) handleRoomMaintenance(ctx *gin.Context) {
	roomID, ok := handler.roomID(ctx)
	if !ok {
		return
	}
	var request maintenanceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil || request.Enabled == nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected {\"enabled\": bool}"))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	room, err := handler.service.SetRoomMaintenance(requestCtx, roomID, *request.Enabled)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"room": newRoomPayload(room)})
}

func (handler *httpHandler) handleListReservations(ctx *gin.Context) {
	var filter frontdesk.ReservationFilter
	if rawRoomID := ctx.Query("room_id"); rawRoomID != "" {
		roomID, err := frontdesk.NewRoomID(rawRoomID)
		if err != nil {
			handler.respondError(ctx, err)
			return
		}
		filter.RoomID = roomID
	}
	if rawStatus := ctx.Query("status"); rawStatus != "" {
		status, err := frontdesk.ParseReservationStatus(rawStatus)
		if err != nil {
			handler.respondError(ctx, err)
			return
		}
		filter.Status = status
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservations, err := handler.service.ListReservations(requestCtx, filter)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]reservationPayload, 0, len(reservations))
	for _, reservation := range reservations {
		payload = append(payload, newReservationPayload(reservation))
	}
	ctx.JSON(http.StatusOK, gin.H{"reservations": payload})
}

func (handler *httpHandler) handleCreateReservation(ctx *gin.Context) {
	var request createReservationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	input, err := request.input()
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservation, err := handler.service.CreateReservation(requestCtx, input)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"reservation": newReservationPayload(reservation)})
}

func (handler *httpHandler) handleGetReservation(ctx *gin.Context) {
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservation, err := handler.service.GetReservation(requestCtx, reservationID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": newReservationPayload(reservation)})
}

func (handler *httpHandler) handleDeleteReservation(ctx *gin.Context) {
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	if err := handler.service.DeleteReservation(requestCtx, reservationID); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (handler *httpHandler) handleRecordPayment(ctx *gin.Context) {
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	var request paymentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	amount, err := frontdesk.NewAmountCents(request.AmountCents)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservation, err := handler.service.RecordPayment(requestCtx, reservationID, amount)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": newReservationPayload(reservation)})
}

func (handler *httpHandler) handleCancelReservation(ctx *gin.Context) {
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reservation, err := handler.service.CancelReservation(requestCtx, reservationID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reservation": newReservationPayload(reservation)})
}

func (handler *httpHandler) handleCheckIn(ctx *gin.Context) {
	handler.handleTransition(ctx, handler.service.PerformCheckIn)
}

func (handler *httpHandler) handleCheckOut(ctx *gin.Context) {
	handler.handleTransition(ctx, handler.service.PerformCheckOut)
}

func (handler *httpHandler) handleTransition(ctx *gin.Context, perform func(context.Context, frontdesk.ReservationID) frontdesk.TransitionResult) {
	// Transitions take no body, but tolerate an empty JSON object from clients.
	var ignored map[string]any
	if err := ctx.ShouldBindJSON(&ignored); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	reservationID, ok := handler.reservationID(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	result := perform(requestCtx, reservationID)
	ctx.JSON(transitionStatus(result), newTransitionPayload(result))
}

func (handler *httpHandler) roomID(ctx *gin.Context) (frontdesk.RoomID, bool) {
	roomID, err := frontdesk.NewRoomID(ctx.Param("id"))
	if err != nil {
		handler.respondError(ctx, err)
		return frontdesk.RoomID{}, false
	}
	return roomID, true
}

func (handler *httpHandler) reservationID(ctx *gin.Context) (frontdesk.ReservationID, bool) {
	reservationID, err := frontdesk.NewReservationID(ctx.Param("id"))
	if err != nil {
		handler.respondError(ctx, err)
		return frontdesk.ReservationID{}, false
	}
	return reservationID, true
}

func (handler *httpHandler) respondError(ctx *gin.Context, err error) {
	status, code := classifyError(err)
	if status >= http.StatusInternalServerError {
		handler.logger.Error("request failed", zap.String("route", ctx.FullPath()), zap.Error(err))
		ctx.JSON(status, errorResponse(code, "store unavailable"))
		return
	}
	ctx.JSON(status, errorResponse(code, err.Error()))
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, frontdesk.ErrReservationNotFound), errors.Is(err, frontdesk.ErrRoomNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, frontdesk.ErrRoomExists), errors.Is(err, frontdesk.ErrReservationExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, frontdesk.ErrStaleRecord), errors.Is(err, frontdesk.ErrTransitionLocked):
		return http.StatusConflict, "conflict"
	case errors.Is(err, frontdesk.ErrRoomOccupied),
		errors.Is(err, frontdesk.ErrRoomHasReservations),
		errors.Is(err, frontdesk.ErrReservationActive),
		errors.Is(err, frontdesk.ErrReservationNotCancellable),
		errors.Is(err, frontdesk.ErrRoomNotAdjustable),
		errors.Is(err, frontdesk.ErrPaymentExceedsPending):
		return http.StatusUnprocessableEntity, "invalid_state"
	case errors.Is(err, frontdesk.ErrInvalidReservationID),
		errors.Is(err, frontdesk.ErrInvalidRoomID),
		errors.Is(err, frontdesk.ErrInvalidGuestID),
		errors.Is(err, frontdesk.ErrInvalidRoomNumber),
		errors.Is(err, frontdesk.ErrInvalidAmountCents),
		errors.Is(err, frontdesk.ErrInvalidStayDates),
		errors.Is(err, frontdesk.ErrInvalidReservationStatus),
		errors.Is(err, frontdesk.ErrInvalidRoomStatus):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusServiceUnavailable, "store_failure"
	}
}

func transitionStatus(result frontdesk.TransitionResult) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.Kind {
	case frontdesk.FailureNotFound:
		return http.StatusNotFound
	case frontdesk.FailureRejected:
		return http.StatusUnprocessableEntity
	case frontdesk.FailureConflict, frontdesk.FailurePartiallyApplied:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

func formatTime(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(time.RFC3339)
	return &formatted
}
