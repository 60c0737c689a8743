package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

func TestMarkReadMapsZeroRowsToNotFound(t *testing.T) {
	repo := &stubFeedRepo{readAffected: 0}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestMarkReadSucceedsWhenRowUpdated(t *testing.T) {
	repo := &stubFeedRepo{readAffected: 1}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("mark read: %v", err)
	}
}

func TestFeedServiceValidatesOrganizationID(t *testing.T) {
	svc, err := NewService(&stubFeedRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.List(ctx, uuid.Nil, pagination.Params{}, false); err == nil {
		t.Error("list accepted nil organization id")
	}
	if err := svc.MarkAllRead(ctx, uuid.Nil); err == nil {
		t.Error("mark all read accepted nil organization id")
	}
	if _, err := svc.UnreadCount(ctx, uuid.Nil); err == nil {
		t.Error("unread count accepted nil organization id")
	}
}
