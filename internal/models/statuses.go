package models

import (
	"fmt"

	"admissions_backend/pkg/apperrors"
)

type ApplicationStatus string
type PaymentStatus string
type UserPaymentStatus string
type UserApplicationStatus string
type RegistrationStatus string
type LoginStatus string

const (
	ApplicationStatusDraft          ApplicationStatus = "draft"
	ApplicationStatusPaymentPending ApplicationStatus = "payment_pending"
	ApplicationStatusSubmitted      ApplicationStatus = "submitted"
	ApplicationStatusUnderReview    ApplicationStatus = "under_review"
	ApplicationStatusApproved       ApplicationStatus = "approved"
	ApplicationStatusRejected       ApplicationStatus = "rejected"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailure PaymentStatus = "failure"

	UserPaymentPending UserPaymentStatus = "pending"
	UserPaymentSuccess UserPaymentStatus = "success"
	UserPaymentFailure UserPaymentStatus = "failure"

	UserApplicationLocked    UserApplicationStatus = "locked"
	UserApplicationCurrent   UserApplicationStatus = "current"
	UserApplicationCompleted UserApplicationStatus = "completed"

	RegistrationPending   RegistrationStatus = "pending"
	RegistrationCompleted RegistrationStatus = "completed"

	LoginPending   LoginStatus = "pending"
	LoginCompleted LoginStatus = "completed"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusDraft:          {ApplicationStatusPaymentPending, ApplicationStatusSubmitted},
	ApplicationStatusPaymentPending: {ApplicationStatusDraft, ApplicationStatusSubmitted},
	ApplicationStatusSubmitted:      {ApplicationStatusUnderReview},
	ApplicationStatusUnderReview:    {ApplicationStatusApproved, ApplicationStatusRejected},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusSuccess, PaymentStatusFailure},
}

var userPaymentTransitions = map[UserPaymentStatus][]UserPaymentStatus{
	UserPaymentPending: {UserPaymentSuccess, UserPaymentFailure},
	UserPaymentFailure: {UserPaymentPending, UserPaymentSuccess},
}

var userApplicationTransitions = map[UserApplicationStatus][]UserApplicationStatus{
	UserApplicationLocked:  {UserApplicationCurrent},
	UserApplicationCurrent: {UserApplicationCompleted},
}

func allowed[S comparable](graph map[S][]S, from, to S) bool {
	for _, next := range graph[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusDraft, ApplicationStatusPaymentPending, ApplicationStatusSubmitted,
		ApplicationStatusUnderReview, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// Editable reports whether the student may still change the application body.
func (s ApplicationStatus) Editable() bool {
	return s == ApplicationStatusDraft || s == ApplicationStatusPaymentPending
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	return allowed(applicationTransitions, s, next)
}

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusSuccess || s == PaymentStatusFailure
}

// Terminal payments never change again.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailure
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return allowed(paymentTransitions, s, next)
}

func (s UserPaymentStatus) CanTransitionTo(next UserPaymentStatus) bool {
	return allowed(userPaymentTransitions, s, next)
}

func (s UserApplicationStatus) CanTransitionTo(next UserApplicationStatus) bool {
	return allowed(userApplicationTransitions, s, next)
}

func transitionError(kind string, from, to any) error {
	return apperrors.ErrInvalidStatusTransition.WithDetails(map[string]string{
		"entity": kind,
		"from":   fmt.Sprint(from),
		"to":     fmt.Sprint(to),
	})
}

// TransitionApplication moves app to next. Writing the current status again is a no-op.
func TransitionApplication(app *Application, next ApplicationStatus) error {
	if app.Status == next {
		return nil
	}
	if !next.Valid() || !app.Status.CanTransitionTo(next) {
		return transitionError("application", app.Status, next)
	}
	app.Status = next
	return nil
}

func TransitionPayment(p *Payment, next PaymentStatus) error {
	if p.Status == next {
		return nil
	}
	if !p.Status.CanTransitionTo(next) {
		return transitionError("payment", p.Status, next)
	}
	p.Status = next
	return nil
}

func TransitionUserPayment(u *User, next UserPaymentStatus) error {
	if u.PaymentStatus == next {
		return nil
	}
	if !u.PaymentStatus.CanTransitionTo(next) {
		return transitionError("user_payment", u.PaymentStatus, next)
	}
	u.PaymentStatus = next
	return nil
}

func TransitionUserApplication(u *User, next UserApplicationStatus) error {
	if u.ApplicationStatus == next {
		return nil
	}
	if !u.ApplicationStatus.CanTransitionTo(next) {
		return transitionError("user_application", u.ApplicationStatus, next)
	}
	u.ApplicationStatus = next
	return nil
}
