package application

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// SetDetectionDraft replaces the detection test selection.
func (c *Console) SetDetectionDraft(d model.DetectionDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.DetectionDraft = d
}

// TestDetection runs the drafted image through the detection endpoint as the
// selected credential. It first fetches the credential's secret with the
// bearer token, then calls detection with that secret. The result is kept
// verbatim in State.TestResult.
func (c *Console) TestDetection(ctx context.Context) (model.DetectionResult, error) {
	c.mu.Lock()
	draft := c.state.DetectionDraft
	c.mu.Unlock()

	if draft.CredentialID == 0 || draft.File == nil {
		return nil, c.failValidation(ctx, "Please select API key and image file")
	}

	token, err := c.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := c.api.GetCredential(ctx, token, draft.CredentialID)
	if err != nil {
		c.checkUnauthorized(ctx, token, err)
		return nil, c.failDetection(ctx, err)
	}

	// A 401 here is about the credential, not the operator session.
	result, err := c.api.Detect(ctx, detail.KeyValue, *draft.File)
	if err != nil {
		return nil, c.failDetection(ctx, err)
	}

	c.mu.Lock()
	c.state.TestResult = result
	c.state.DetectionDraft = model.DetectionDraft{}
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "detection test completed", "credential_id", draft.CredentialID, "file", draft.File.Name)
	return result, nil
}

func (c *Console) failDetection(ctx context.Context, err error) error {
	c.mu.Lock()
	c.state.TestResult = nil
	c.mu.Unlock()

	c.logger.WarnContext(ctx, "detection test failed", "error", err)
	c.notify(ctx, driven.NoticeError, "Detection failed: "+driven.Reason(err))
	return fmt.Errorf("%w: detection: %w", ErrActionFailed, err)
}
