package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"garagehub/pkg/domain"
	"garagehub/pkg/store"
)

type fakeObjectStore struct {
	puts    map[string]string
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{puts: map[string]string{}}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, _ io.Reader, _ int64, contentType string) error {
	f.puts[key] = contentType
	return nil
}

func (f *fakeObjectStore) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://objects.local/%s?expires=%d", key, int(expiry.Seconds())), nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func newTestAppWithObjects(t *testing.T) (*App, *fakeObjectStore) {
	t.Helper()
	objects := newFakeObjectStore()
	a, err := New(Config{Store: store.NewMemoryStore(), Queue: &stubQueue{}, Objects: objects})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, objects
}

func TestUploadAttachmentRecordsKey(t *testing.T) {
	a, objects := newTestAppWithObjects(t)
	ctx := context.Background()

	repair, err := a.CreateRepair(ctx, domain.Repair{LicensePlateNumber: "1234567"})
	if err != nil {
		t.Fatalf("create repair: %v", err)
	}

	key, err := a.UploadAttachment(ctx, repair.ID, "front bumper!.jpg", strings.NewReader("jpeg-bytes"), 10)
	if err != nil {
		t.Fatalf("upload attachment: %v", err)
	}
	want := "repairs/" + repair.ID + "/front_bumper_.jpg"
	if key != want {
		t.Fatalf("key = %q, want %q", key, want)
	}
	if ct := objects.puts[key]; ct != "image/jpeg" {
		t.Fatalf("content type = %q", ct)
	}

	got, err := a.GetRepair(ctx, repair.ID)
	if err != nil {
		t.Fatalf("get repair: %v", err)
	}
	if len(got.Attachments) != 1 || got.Attachments[0] != key {
		t.Fatalf("attachments = %v, want [%s]", got.Attachments, key)
	}

	// The original (unsanitized) name resolves to the same key.
	url, err := a.AttachmentURL(ctx, repair.ID, "front bumper!.jpg")
	if err != nil {
		t.Fatalf("attachment url: %v", err)
	}
	if !strings.Contains(url, key) {
		t.Fatalf("url %q does not reference key %q", url, key)
	}
}

func TestAttachmentURLUnknownAttachmentNotFound(t *testing.T) {
	a, _ := newTestAppWithObjects(t)
	ctx := context.Background()

	repair, err := a.CreateRepair(ctx, domain.Repair{LicensePlateNumber: "1234567"})
	if err != nil {
		t.Fatalf("create repair: %v", err)
	}
	if _, err := a.AttachmentURL(ctx, repair.ID, "never-uploaded.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unrecorded attachment, got %v", err)
	}
	if _, err := a.AttachmentURL(ctx, "missing-repair", "x.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for missing repair, got %v", err)
	}
}

func TestUploadAttachmentWithoutObjectStoreFails(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	repair, err := a.CreateRepair(ctx, domain.Repair{LicensePlateNumber: "1234567"})
	if err != nil {
		t.Fatalf("create repair: %v", err)
	}
	if _, err := a.UploadAttachment(ctx, repair.ID, "a.pdf", strings.NewReader("x"), 1); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected internal error without object store, got %v", err)
	}
	if _, err := a.AttachmentURL(ctx, repair.ID, "a.pdf"); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected internal error without object store, got %v", err)
	}
}

// attachmentFailStore fails AddAttachment while leaving every other
// repair operation on the embedded store.
type attachmentFailStore struct {
	store.Store
	err error
}

func (s attachmentFailStore) Repairs() store.RepairStore {
	return attachmentFailRepairs{s.Store.Repairs(), s.err}
}

type attachmentFailRepairs struct {
	store.RepairStore
	err error
}

func (r attachmentFailRepairs) AddAttachment(context.Context, string, string) error { return r.err }

func TestUploadAttachmentCleansUpWhenRecordFails(t *testing.T) {
	ctx := context.Background()
	objects := newFakeObjectStore()
	a, err := New(Config{
		Store:   attachmentFailStore{store.NewMemoryStore(), errors.New("write failed")},
		Queue:   &stubQueue{},
		Objects: objects,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	repair, err := a.CreateRepair(ctx, domain.Repair{LicensePlateNumber: "1234567"})
	if err != nil {
		t.Fatalf("create repair: %v", err)
	}
	if _, err := a.UploadAttachment(ctx, repair.ID, "a.pdf", strings.NewReader("x"), 1); err == nil {
		t.Fatal("expected upload to fail when the key cannot be recorded")
	}
	key := "repairs/" + repair.ID + "/a.pdf"
	if len(objects.deleted) != 1 || objects.deleted[0] != key {
		t.Fatalf("orphaned object not cleaned up: deleted = %v", objects.deleted)
	}
}

func TestUploadAttachmentRecordVanishedRepairIsNotFound(t *testing.T) {
	ctx := context.Background()
	objects := newFakeObjectStore()
	a, err := New(Config{
		Store:   attachmentFailStore{store.NewMemoryStore(), store.ErrNotFound},
		Queue:   &stubQueue{},
		Objects: objects,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	repair, err := a.CreateRepair(ctx, domain.Repair{LicensePlateNumber: "1234567"})
	if err != nil {
		t.Fatalf("create repair: %v", err)
	}
	if _, err := a.UploadAttachment(ctx, repair.ID, "a.pdf", strings.NewReader("x"), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(objects.deleted) != 1 {
		t.Fatalf("orphaned object not cleaned up: deleted = %v", objects.deleted)
	}
}

func TestDeleteRepairRemovesAttachments(t *testing.T) {
	a, objects := newTestAppWithObjects(t)
	ctx := context.Background()

	repair, err := a.CreateRepair(ctx, domain.Repair{LicensePlateNumber: "1234567"})
	if err != nil {
		t.Fatalf("create repair: %v", err)
	}
	key, err := a.UploadAttachment(ctx, repair.ID, "invoice.pdf", strings.NewReader("x"), 1)
	if err != nil {
		t.Fatalf("upload attachment: %v", err)
	}

	if err := a.DeleteRepair(ctx, repair.ID); err != nil {
		t.Fatalf("delete repair: %v", err)
	}
	if len(objects.deleted) != 1 || objects.deleted[0] != key {
		t.Fatalf("expected attachment %q deleted, got %v", key, objects.deleted)
	}
}
