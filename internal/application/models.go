package application

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// modelExt is the only model file type the server accepts.
const modelExt = ".pt"

// SetUploadDraft replaces the model upload draft.
func (c *Console) SetUploadDraft(d UploadDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.UploadDraft = d
}

// UploadModel uploads the drafted model file. The draft is reset only on
// success.
func (c *Console) UploadModel(ctx context.Context) error {
	const action = "upload model"

	token, err := c.requireSession(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	draft := c.state.UploadDraft
	c.mu.Unlock()

	if draft.File == nil {
		return c.failValidation(ctx, "Please select a model file")
	}
	if !strings.EqualFold(filepath.Ext(draft.File.Name), modelExt) {
		return c.failValidation(ctx, fmt.Sprintf("Failed to %s: only %s files are allowed", action, modelExt))
	}

	_, err = c.api.UploadModel(ctx, token, driven.UploadModelRequest{
		File:        *draft.File,
		Description: strings.TrimSpace(draft.Description),
	})
	if err != nil {
		return c.failMutation(ctx, action, token, err)
	}

	c.afterMutation(ctx, c.RefreshModels)
	c.SetUploadDraft(UploadDraft{})
	c.notify(ctx, driven.NoticeSuccess, "Model uploaded successfully!")
	return nil
}

// ActivateModel makes a model the active one. Activation changes the
// aggregate counters, so stats are re-fetched after models.
func (c *Console) ActivateModel(ctx context.Context, id int64) error {
	const action = "activate model"

	token, err := c.requireSession(ctx)
	if err != nil {
		return err
	}
	if err := c.api.ActivateModel(ctx, token, id); err != nil {
		return c.failMutation(ctx, action, token, err)
	}

	c.afterMutation(ctx, c.RefreshModels, c.RefreshStats)
	c.notify(ctx, driven.NoticeSuccess, "Model activated successfully!")
	return nil
}

// DeleteModel asks for confirmation, then deletes the model.
func (c *Console) DeleteModel(ctx context.Context, id int64) error {
	const action = "delete model"

	token, err := c.requireSession(ctx)
	if err != nil {
		return err
	}
	if ok, err := c.confirm(ctx, "Are you sure you want to delete this model?"); !ok {
		return err
	}

	if err := c.api.DeleteModel(ctx, token, id); err != nil {
		return c.failMutation(ctx, action, token, err)
	}

	c.afterMutation(ctx, c.RefreshModels)
	c.notify(ctx, driven.NoticeSuccess, "Model deleted successfully!")
	return nil
}

// DownloadModel writes the model file into w. It is a read: failures are
// returned, not announced.
func (c *Console) DownloadModel(ctx context.Context, id int64, w io.Writer) (int64, error) {
	token, err := c.requireSession(ctx)
	if err != nil {
		return 0, err
	}
	n, err := c.api.DownloadModel(ctx, token, id, w)
	if err != nil {
		c.checkUnauthorized(ctx, token, err)
		return n, fmt.Errorf("download model %d: %w", id, err)
	}
	c.logger.InfoContext(ctx, "model downloaded", "model_id", id, "bytes", n)
	return n, nil
}
