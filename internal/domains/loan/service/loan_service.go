package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	bookModel "booklend-backend/internal/domains/book/model"
	"booklend-backend/internal/domains/book/repository"
	"booklend-backend/internal/domains/loan/model"
	userModel "booklend-backend/internal/domains/user/model"
	userRepo "booklend-backend/internal/domains/user/repository"
)

// actorRole names who is allowed to fire a transition.
type actorRole int

const (
	roleOwner actorRole = iota
	roleBorrower
)

// transitionRule describes one row of the ledger's state machine. apply runs
// on the in-transaction snapshot only after every precondition passed, so it
// is safe to re-execute when the optimistic retry re-reads.
type transitionRule struct {
	from    bookModel.BookStatus
	fromErr *bookModel.LendingError
	actor   actorRole
	// loanStatus the active loan must be in before the transition
	loanFrom    model.LoanStatus
	loanFromErr *bookModel.LendingError
	event       model.EventType
	apply       func(book *bookModel.Book, loan *model.Loan, now time.Time)
}

var transitionRules = map[model.EventType]transitionRule{
	model.EventRequestAccepted: {
		from:        bookModel.BookStatusRequested,
		fromErr:     bookModel.ErrBookNotRequested,
		actor:       roleOwner,
		loanFrom:    model.LoanStatusRequested,
		loanFromErr: bookModel.ErrLoanNotPending,
		event:       model.EventRequestAccepted,
		apply: func(book *bookModel.Book, loan *model.Loan, now time.Time) {
			loan.Status = model.LoanStatusLoaned
			loan.AcceptedAt = &now
			loan.LoanedAt = &now
			book.Status = bookModel.BookStatusLoaned
		},
	},
	model.EventRequestRejected: {
		from:        bookModel.BookStatusRequested,
		fromErr:     bookModel.ErrBookNotRequested,
		actor:       roleOwner,
		loanFrom:    model.LoanStatusRequested,
		loanFromErr: bookModel.ErrLoanNotPending,
		event:       model.EventRequestRejected,
		apply: func(book *bookModel.Book, loan *model.Loan, now time.Time) {
			loan.Status = model.LoanStatusRejected
			loan.Active = false
			loan.RejectedAt = &now
			book.ResetToAvailable()
			book.CancelledByBorrower = false
		},
	},
	model.EventRequestCancelled: {
		from:        bookModel.BookStatusRequested,
		fromErr:     bookModel.ErrBookNotRequested,
		actor:       roleBorrower,
		loanFrom:    model.LoanStatusRequested,
		loanFromErr: bookModel.ErrLoanNotPending,
		event:       model.EventRequestCancelled,
		apply: func(book *bookModel.Book, loan *model.Loan, now time.Time) {
			loan.Status = model.LoanStatusCancelled
			loan.Active = false
			loan.CancelledAt = &now
			book.ResetToAvailable()
			// the owner did not act; the notifier must not phrase this
			// as a rejection
			book.CancelledByBorrower = true
		},
	},
	model.EventBookReturned: {
		from:        bookModel.BookStatusLoaned,
		fromErr:     bookModel.ErrBookNotLoaned,
		actor:       roleBorrower,
		loanFrom:    model.LoanStatusLoaned,
		loanFromErr: bookModel.ErrLoanNotLoaned,
		event:       model.EventBookReturned,
		apply: func(book *bookModel.Book, loan *model.Loan, now time.Time) {
			loan.Status = model.LoanStatusReturned
			loan.Active = false
			loan.ReturnedAt = &now
			book.ResetToAvailable()
			book.CancelledByBorrower = false
		},
	},
}

type loanService struct {
	store    repository.Store
	users    userRepo.Repository
	notifier TransitionNotifier
}

func NewLoanService(store repository.Store, users userRepo.Repository, notifier TransitionNotifier) LoanService {
	return &loanService{store: store, users: users, notifier: notifier}
}

// RequestBook opens a loan. It is the only transition that creates a loan
// row instead of advancing one.
func (s *loanService) RequestBook(ctx context.Context, borrowerID, bookID uuid.UUID) (*model.Loan, error) {
	var result model.Loan
	var event model.TransitionEvent

	err := s.store.RunAggregate(ctx, bookID, func(tx repository.AggregateTx) error {
		book := tx.Book()
		if book.OwnerID == borrowerID {
			return bookModel.ErrOwnBookRequest
		}
		if book.Status != bookModel.BookStatusAvailable {
			return bookModel.ErrBookNotAvailable
		}

		now := time.Now()
		loan := &model.Loan{
			ID:          uuid.New(),
			BookID:      book.ID,
			OwnerID:     book.OwnerID,
			BorrowerID:  borrowerID,
			Status:      model.LoanStatusRequested,
			Active:      true,
			RequestedAt: &now,
		}

		book.Status = bookModel.BookStatusRequested
		book.BorrowerID = &borrowerID
		book.CurrentLoanID = &loan.ID
		book.RequestedAt = &now
		book.CancelledByBorrower = false

		tx.CreateLoan(loan)
		tx.PutBook(book)

		result = *loan
		event = model.TransitionEvent{
			Type:              model.EventBookRequested,
			BookID:            book.ID,
			BookTitle:         book.Title,
			LoanID:            loan.ID,
			ActorID:           borrowerID,
			CounterpartUserID: book.OwnerID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, event)
	return &result, nil
}

func (s *loanService) AcceptRequest(ctx context.Context, ownerID, bookID uuid.UUID) (*model.Loan, error) {
	return s.advance(ctx, model.EventRequestAccepted, ownerID, bookID)
}

func (s *loanService) RejectRequest(ctx context.Context, ownerID, bookID uuid.UUID) (*model.Loan, error) {
	return s.advance(ctx, model.EventRequestRejected, ownerID, bookID)
}

func (s *loanService) CancelRequest(ctx context.Context, borrowerID, bookID uuid.UUID) (*model.Loan, error) {
	return s.advance(ctx, model.EventRequestCancelled, borrowerID, bookID)
}

// ReturnBook is fired by the borrower handing the book back; the owner is
// notified, not asked.
func (s *loanService) ReturnBook(ctx context.Context, borrowerID, bookID uuid.UUID) (*model.Loan, error) {
	return s.advance(ctx, model.EventBookReturned, borrowerID, bookID)
}

// advance runs one table-driven transition against the aggregate.
func (s *loanService) advance(ctx context.Context, eventType model.EventType, actorID, bookID uuid.UUID) (*model.Loan, error) {
	rule := transitionRules[eventType]

	var result model.Loan
	var event model.TransitionEvent

	err := s.store.RunAggregate(ctx, bookID, func(tx repository.AggregateTx) error {
		book := tx.Book()

		switch rule.actor {
		case roleOwner:
			if book.OwnerID != actorID {
				return bookModel.ErrNotOwner
			}
		case roleBorrower:
			if book.BorrowerID == nil || *book.BorrowerID != actorID {
				return bookModel.ErrNotBorrower
			}
		}
		if book.Status != rule.from {
			return rule.fromErr
		}

		loan, err := tx.CurrentLoan(ctx)
		if err != nil {
			return err
		}
		if !loan.Active || loan.Status != rule.loanFrom {
			return rule.loanFromErr
		}

		counterpart := loan.BorrowerID
		if rule.actor == roleBorrower {
			counterpart = loan.OwnerID
		}

		rule.apply(book, loan, time.Now())

		tx.PutLoan(loan)
		tx.PutBook(book)

		result = *loan
		event = model.TransitionEvent{
			Type:                rule.event,
			BookID:              book.ID,
			BookTitle:           book.Title,
			LoanID:              loan.ID,
			ActorID:             actorID,
			CounterpartUserID:   counterpart,
			CancelledByBorrower: book.CancelledByBorrower,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, event)
	return &result, nil
}

// emit resolves the actor's display name and hands the event to the
// notifier. The transition is already committed; failures here are logged
// and swallowed.
func (s *loanService) emit(ctx context.Context, event model.TransitionEvent) {
	if u, err := s.users.GetUser(ctx, event.ActorID); err == nil {
		event.ActorName = u.DisplayName
	} else if !errors.Is(err, userModel.ErrUserNotFound) {
		log.Warn().Err(err).Str("actor_id", event.ActorID.String()).
			Msg("failed to resolve actor name for notification")
	}

	if err := s.notifier.NotifyTransition(ctx, event); err != nil {
		log.Error().Err(err).
			Str("event", string(event.Type)).
			Str("book_id", event.BookID.String()).
			Msg("failed to enqueue transition notification")
	}
}

func (s *loanService) ListByBorrower(ctx context.Context, borrowerID uuid.UUID, opts model.ListLoansOptions) ([]model.LoanWithBook, error) {
	return s.store.ListLoansByBorrower(ctx, borrowerID, opts)
}
