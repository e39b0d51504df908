package cart

import (
	"context"

	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/pkg/errors"
)

// Submission is the request payload built from the cart
type Submission struct {
	Purpose string
	Notes   string
	Items   []SubmissionItem
}

// SubmissionItem is one product and quantity of a Submission
type SubmissionItem struct {
	ProductID string
	Quantity  int
}

// Submitter creates a request in the asset backend. Implementations do not retry.
type Submitter interface {
	Submit(ctx context.Context, submission Submission) (*domain.SubmittedRequest, error)
}

// SubmitRequest sends the cart to the backend as one request.
//
// It fails with *errors.ErrInvalidState before any network call when the cart is empty, has no purpose,
// or already has a submission in flight. On success the cart is cleared and the created request returned.
// On failure the cart is left intact, the message is recorded as LastError and the error is returned
// as *errors.ErrSubmissionFailed.
func (s *Store) SubmitRequest(ctx context.Context) (*domain.SubmittedRequest, error) {
	s.mu.Lock()
	switch {
	case len(s.state.Lines) == 0:
		s.mu.Unlock()
		return nil, &errors.ErrInvalidState{Reason: "cart is empty"}
	case !s.validLocked():
		s.mu.Unlock()
		return nil, &errors.ErrInvalidState{Reason: "request purpose is required"}
	case s.state.Loading:
		s.mu.Unlock()
		return nil, &errors.ErrInvalidState{Reason: "a submission is already in progress"}
	case s.submitter == nil:
		s.mu.Unlock()
		return nil, &errors.ErrInvalidState{Reason: "request submission is not configured"}
	}

	s.state.Loading = true
	s.state.LastError = ""
	submission := s.submissionLocked()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state.Loading = false
		s.mu.Unlock()
	}()

	created, err := s.submitter.Submit(ctx, submission)
	if err == nil && created == nil {
		err = &errors.ErrSubmissionFailed{Message: "backend returned no request"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		var failed *errors.ErrSubmissionFailed
		if !errors.As(err, &failed) {
			err = &errors.ErrSubmissionFailed{Err: err}
		}
		s.state.LastError = err.Error()
		s.logger.Warn("Request submission failed",
			zap.Int("lines", len(submission.Items)),
			zap.Error(err),
		)
		return nil, err
	}

	s.clearLocked()
	s.persistLocked(ctx)

	s.logger.Info("Request submitted",
		zap.Int64("request_id", created.ID),
		zap.String("request_number", created.RequestNumber),
		zap.Int("lines", len(submission.Items)),
	)
	return created, nil
}

func (s *Store) submissionLocked() Submission {
	items := make([]SubmissionItem, 0, len(s.state.Lines))
	for _, line := range s.state.Lines {
		items = append(items, SubmissionItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}
	return Submission{
		Purpose: s.state.Purpose,
		Notes:   s.state.Notes,
		Items:   items,
	}
}
