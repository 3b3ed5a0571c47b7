package liststore

import (
	"context"
	"errors"
	"fmt"

	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

// IntentKind tells the presentation layer which dialog to show.
type IntentKind string

const (
	IntentConfirmDestructive IntentKind = "confirm_destructive"
	IntentInformBlocked      IntentKind = "inform_blocked"
	IntentInformOffline      IntentKind = "inform_offline"
	IntentInformError        IntentKind = "inform_error"
	IntentSuccess            IntentKind = "success"
)

// Intent is a UI-neutral description of a dialog.
type Intent struct {
	Kind    IntentKind `json:"kind"`
	ItemID  int64      `json:"item_id,omitempty"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

const offlineDeleteMessage = "the server is unreachable, deleting requires a connection"

// PlanDelete decides what to ask before deleting id. It never mutates anything.
func (s *Store[T]) PlanDelete(ctx context.Context, id int64) Intent {
	if s.cfg.Delete == nil {
		return Intent{Kind: IntentInformError, ItemID: id, Title: "Not supported", Message: "this list does not support deleting"}
	}

	s.mu.Lock()
	offline := s.offline
	item, found := s.find(id)
	s.mu.Unlock()

	if offline {
		return offlineIntent(id)
	}
	if !s.gate.CheckServerHealth(ctx).OK {
		s.setOffline()
		return offlineIntent(id)
	}
	if !found {
		return Intent{Kind: IntentInformError, ItemID: id, Title: "Not found", Message: fmt.Sprintf("item #%d is not in the list", id)}
	}

	if s.cfg.CanDelete != nil {
		verdict, err := s.cfg.CanDelete(ctx, item)
		if err != nil {
			return Intent{Kind: IntentInformError, ItemID: id, Title: "Error", Message: odoo.Message(err)}
		}
		if !verdict.CanDelete {
			return Intent{Kind: IntentInformBlocked, ItemID: id, Title: "Cannot delete", Message: verdict.Message}
		}
	}

	name := fmt.Sprintf("#%d", id)
	if s.cfg.Describe != nil {
		if d := s.cfg.Describe(item); d != "" {
			name = d
		}
	}
	return Intent{
		Kind:    IntentConfirmDestructive,
		ItemID:  id,
		Title:   "Confirm deletion",
		Message: fmt.Sprintf("%s will be permanently deleted. This cannot be undone.", name),
	}
}

// DeleteOutcome maps the result of Delete to the dialog shown afterwards.
func DeleteOutcome(id int64, err error) Intent {
	if err == nil {
		return Intent{Kind: IntentSuccess, ItemID: id, Title: "Deleted", Message: "the record was deleted"}
	}
	if errors.Is(err, appErrors.ErrOffline) {
		return offlineIntent(id)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return Intent{Kind: IntentInformError, ItemID: id, Title: "Error", Message: appErr.Message}
	}
	return Intent{Kind: IntentInformError, ItemID: id, Title: "Error", Message: err.Error()}
}

func offlineIntent(id int64) Intent {
	return Intent{Kind: IntentInformOffline, ItemID: id, Title: "Offline", Message: offlineDeleteMessage}
}
