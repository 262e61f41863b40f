package frontdesk

import "time"

const (
	operationCheckIn           = "check_in"
	operationCheckOut          = "check_out"
	operationCompensate        = "compensate"
	operationCreateRoom        = "create_room"
	operationUpdateRoom        = "update_room"
	operationDeleteRoom        = "delete_room"
	operationRoomMaintenance   = "room_maintenance"
	operationCreateReservation = "create_reservation"
	operationRecordPayment     = "record_payment"
	operationCancelReservation = "cancel_reservation"
	operationDeleteReservation = "delete_reservation"
	operationPublishEvent      = "publish_event"

	operationStatusOK       = "ok"
	operationStatusRejected = "rejected"
	operationStatusError    = "error"

	reservationLockKeyPrefix = "reservation:"

	compensationTimeout = 5 * time.Second
)

// Event types published after a successful transition.
const (
	EventTypeCheckedIn  = "reservation.checked_in"
	EventTypeCheckedOut = "reservation.checked_out"
)

// User-displayable messages carried by TransitionResult.Error and Verdict.Reason.
const (
	MessageReservationNotFound      = "reservation not found"
	MessageRoomNotFound             = "room not found"
	MessageCheckInTooEarly          = "check-in not allowed before the reserved date"
	MessageRoomOccupied             = "room already occupied"
	MessageRoomUnderMaintenance     = "room under maintenance"
	MessageCheckInNotAllowedStatus  = "reservation is not awaiting check-in"
	MessageCheckOutNotAllowedStatus = "reservation is not checked in"
	MessagePendingBalance           = "outstanding balance exists: settle the pending amount before check-out"
	MessageCheckInValidationFailed  = "could not validate check-in, try again"
	MessageCheckOutValidationFailed = "could not validate check-out, try again"
	MessageCheckInFailed            = "could not complete check-in, try again"
	MessageCheckOutFailed           = "could not complete check-out, try again"
	MessageConcurrentUpdate         = "reservation or room changed in the meantime, reload and try again"
	MessageTransitionInProgress     = "another check-in or check-out is in progress for this reservation, try again"
	MessagePartiallyApplied         = "the reservation was updated but the room was not, contact the front desk to reconcile"
)
