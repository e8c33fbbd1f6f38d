package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"garagehub/internal/util"
	"garagehub/pkg/domain"
	"garagehub/pkg/store"
)

// ListRepairs returns all open repairs.
func (a *App) ListRepairs(ctx context.Context) ([]domain.Repair, error) {
	return a.repairs.List(ctx)
}

// GetRepair retrieves an open repair by id.
func (a *App) GetRepair(ctx context.Context, id string) (domain.Repair, error) {
	return a.repairs.Get(ctx, id)
}

// CreateRepair opens a repair job.
func (a *App) CreateRepair(ctx context.Context, repair domain.Repair) (domain.Repair, error) {
	if strings.TrimSpace(repair.TimeStampStart) == "" {
		repair.TimeStampStart = time.Now().UTC().Format(time.RFC3339)
	}
	repair.Attachments = nil
	return a.repairs.Create(ctx, repair)
}

// UpdateRepair applies a sparse patch to an open repair.
func (a *App) UpdateRepair(ctx context.Context, id string, patch store.Patch) (domain.Repair, error) {
	return a.repairs.Update(ctx, id, patch)
}

// DeleteRepair removes an open repair and its attachments.
func (a *App) DeleteRepair(ctx context.Context, id string) error {
	repair, err := a.repairs.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := a.repairs.Delete(ctx, id); err != nil {
		return err
	}
	a.deleteAttachments(ctx, repair)
	return nil
}

// FinishRepair closes an open repair: the finish document inherits the
// repair's fields where the caller left them empty, lands in the
// repair-finish collection, and the open repair is deleted.
func (a *App) FinishRepair(ctx context.Context, id string, fin domain.RepairFinish) (domain.RepairFinish, error) {
	repair, err := a.repairs.Get(ctx, id)
	if err != nil {
		return domain.RepairFinish{}, err
	}
	if fin.Total < 0 {
		return domain.RepairFinish{}, fmt.Errorf("%w: total must be >= 0", ErrBadRequest)
	}
	if fin.Kilometer < 0 {
		return domain.RepairFinish{}, fmt.Errorf("%w: kilometer must be >= 0", ErrBadRequest)
	}
	fin.ID = uuid.NewString()
	fin.LicensePlateNumber = repair.LicensePlateNumber
	if fin.Tipul == nil {
		fin.Tipul = repair.Tipul
	}
	if fin.Rows == nil {
		fin.Rows = repair.Rows
	}
	if fin.TimeStampStart == "" {
		fin.TimeStampStart = repair.TimeStampStart
	}
	if fin.TimeStampEnd == "" {
		fin.TimeStampEnd = time.Now().UTC().Format(time.RFC3339)
	}
	if fin.Note == "" {
		fin.Note = repair.Note
	}
	if err := a.store.RepairFinishes().Insert(ctx, fin); err != nil {
		return domain.RepairFinish{}, err
	}
	if err := a.repairs.Delete(ctx, id); err != nil {
		return domain.RepairFinish{}, err
	}
	a.deleteAttachments(ctx, repair)
	return fin, nil
}

// UploadAttachment stores a photo/scan against an open repair and
// records its object key. Returns the key.
func (a *App) UploadAttachment(ctx context.Context, repairID, filename string, r io.Reader, size int64) (string, error) {
	if a.objects == nil {
		return "", fmt.Errorf("%w: object storage not configured", ErrInternal)
	}
	if _, err := a.repairs.Get(ctx, repairID); err != nil {
		return "", err
	}
	name := sanitizeFilename(filepath.Base(filename))
	if name == "" {
		return "", fmt.Errorf("%w: filename required", ErrBadRequest)
	}
	key := path.Join("repairs", repairID, name)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := a.objects.Put(ctx, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("save attachment: %w", err)
	}
	if err := a.store.Repairs().AddAttachment(ctx, repairID, key); err != nil {
		_ = a.objects.Delete(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return key, nil
}

// AttachmentURL returns a pre-signed download URL for a recorded
// attachment.
func (a *App) AttachmentURL(ctx context.Context, repairID, name string) (string, error) {
	if a.objects == nil {
		return "", fmt.Errorf("%w: object storage not configured", ErrInternal)
	}
	repair, err := a.repairs.Get(ctx, repairID)
	if err != nil {
		return "", err
	}
	key := path.Join("repairs", repairID, sanitizeFilename(name))
	if !slices.Contains(repair.Attachments, key) {
		return "", ErrNotFound
	}
	url, err := a.objects.PresignGet(ctx, key, a.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign attachment: %w", err)
	}
	return url, nil
}

func (a *App) deleteAttachments(ctx context.Context, repair domain.Repair) {
	if a.objects == nil || len(repair.Attachments) == 0 {
		return
	}
	logger := util.LoggerFromContext(ctx)
	for _, key := range repair.Attachments {
		if err := a.objects.Delete(ctx, key); err != nil {
			logger.Warn("delete attachment failed", "repair_id", repair.ID, "key", key, "error", err)
		}
	}
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		if r <= 0x7f {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
				b.WriteRune(r)
				lastUnderscore = false
				continue
			}
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
