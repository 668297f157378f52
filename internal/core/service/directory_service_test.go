package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

func newDirectorySvc(store *stubStore, backend *stubBackend) *DirectoryService {
	return NewDirectoryService(backend, NewLocalCache(store), zerolog.Nop())
}

func validForm() domain.UserForm {
	return domain.UserForm{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     "ada@example.com",
		Role:      domain.RoleUser,
		Active:    true,
		NotLocked: true,
	}
}

func TestDirectoryService_List_ReplacesSnapshot(t *testing.T) {
	store := newStubStore()
	users := sampleUsers()
	svc := newDirectorySvc(store, &stubBackend{
		listFn: func(context.Context) ([]domain.User, error) { return users, nil },
	})
	ctx := context.Background()

	if err := svc.CacheSnapshot(ctx, []domain.User{{Username: "stale"}}); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != len(users) {
		t.Fatalf("expected %d users, got %d", len(users), len(got))
	}

	snapshot, err := svc.ReadSnapshot(ctx)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if !reflect.DeepEqual(snapshot, users) {
		t.Fatalf("snapshot was not replaced wholesale: %+v", snapshot)
	}
}

func TestDirectoryService_List_ErrorKeepsSnapshot(t *testing.T) {
	store := newStubStore()
	svc := newDirectorySvc(store, &stubBackend{
		listFn: func(context.Context) ([]domain.User, error) {
			return nil, domain.NewNetworkError(errors.New("connection refused"))
		},
	})
	ctx := context.Background()
	_ = svc.CacheSnapshot(ctx, sampleUsers())

	if _, err := svc.List(ctx); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}

	snapshot, _ := svc.ReadSnapshot(ctx)
	if len(snapshot) != 3 {
		t.Fatalf("failed fetch must not touch the snapshot, got %d users", len(snapshot))
	}
}

func TestDirectoryService_List_CacheFailureStillReturnsUsers(t *testing.T) {
	store := newStubStore()
	store.setErr = errStoreDown
	svc := newDirectorySvc(store, &stubBackend{
		listFn: func(context.Context) ([]domain.User, error) { return sampleUsers(), nil },
	})

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected users despite cache failure")
	}
}

func TestDirectoryService_SnapshotRoundTrip(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{})
	ctx := context.Background()
	users := sampleUsers()

	if err := svc.CacheSnapshot(ctx, users); err != nil {
		t.Fatalf("CacheSnapshot: %v", err)
	}
	got, err := svc.ReadSnapshot(ctx)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if !reflect.DeepEqual(got, users) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, users)
	}
}

func TestDirectoryService_Search(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{})
	ctx := context.Background()
	users := sampleUsers()
	_ = svc.CacheSnapshot(ctx, users)

	cases := []struct {
		term string
		want []string
	}{
		{"", []string{"ada", "cbab", "ghopper"}},
		{"nomatch__xyz", []string{"ada", "cbab", "ghopper"}},
		{"LOVE", []string{"ada"}},
		{"babbage", []string{"cbab"}},
		{"NAVY.MIL", []string{"ghopper"}},
		{"u2", []string{"cbab"}},
		{"GHOP", []string{"ghopper"}},
		{"a", []string{"ada", "cbab", "ghopper"}},
	}

	for _, tc := range cases {
		got, err := svc.Search(ctx, tc.term)
		if err != nil {
			t.Fatalf("Search(%q): %v", tc.term, err)
		}
		names := make([]string, 0, len(got))
		for _, u := range got {
			names = append(names, u.Username)
		}
		if !reflect.DeepEqual(names, tc.want) {
			t.Errorf("Search(%q) = %v, want %v", tc.term, names, tc.want)
		}
	}
}

func TestDirectoryService_Search_SingleRecordSnapshot(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{})
	ctx := context.Background()
	ada := domain.User{FirstName: "Ada", LastName: "Lovelace", Username: "ada", Email: "a@x.com", UserID: "u1"}
	_ = svc.CacheSnapshot(ctx, []domain.User{ada})

	got, err := svc.Search(ctx, "LOVE")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || !reflect.DeepEqual(got[0], ada) {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDirectoryService_Search_EmptySnapshot(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{})

	got, err := svc.Search(context.Background(), "ada")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestDirectoryService_Create(t *testing.T) {
	var sent domain.UserForm
	svc := newDirectorySvc(newStubStore(), &stubBackend{
		addFn: func(_ context.Context, form domain.UserForm) (*domain.User, error) {
			sent = form
			return &domain.User{Username: form.Username}, nil
		},
	})

	user, err := svc.Create(context.Background(), validForm())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.Username != "ada" || sent.Email != "ada@example.com" {
		t.Fatalf("unexpected result: %+v / %+v", user, sent)
	}
}

func TestDirectoryService_Create_Validation(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{
		addFn: func(context.Context, domain.UserForm) (*domain.User, error) {
			t.Fatalf("backend should not be called")
			return nil, nil
		},
	})

	form := validForm()
	form.Role = "ROLE_ROOT"
	form.Email = "nope"

	_, err := svc.Create(context.Background(), form)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDirectoryService_Update_RequiresCurrentUsername(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{
		updateFn: func(context.Context, domain.UserForm) (*domain.User, error) {
			t.Fatalf("backend should not be called")
			return nil, nil
		},
	})

	_, err := svc.Update(context.Background(), validForm())
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDirectoryService_Update(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{
		updateFn: func(_ context.Context, form domain.UserForm) (*domain.User, error) {
			if form.CurrentUsername != "ada" {
				t.Fatalf("update must address by current username, got %q", form.CurrentUsername)
			}
			return &domain.User{Username: form.Username}, nil
		},
	})

	form := validForm()
	form.CurrentUsername = "ada"
	form.Username = "countess"

	user, err := svc.Update(context.Background(), form)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if user.Username != "countess" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestDirectoryService_Delete(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{
		deleteFn: func(_ context.Context, username string) (domain.Ack, error) {
			return domain.Ack{Message: "User deleted successfully"}, nil
		},
	})

	ack, err := svc.Delete(context.Background(), "ada")
	if err != nil || ack.Message != "User deleted successfully" {
		t.Fatalf("unexpected result: %+v, %v", ack, err)
	}

	if _, err := svc.Delete(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty username, got %v", err)
	}
}

func TestDirectoryService_ResetPassword(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{
		resetFn: func(_ context.Context, email string) (domain.Ack, error) {
			return domain.Ack{Message: "An email with a new password was sent to: " + email}, nil
		},
	})

	ack, err := svc.ResetPassword(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if ack.Message != "An email with a new password was sent to: ada@example.com" {
		t.Fatalf("unexpected ack: %+v", ack)
	}

	if _, err := svc.ResetPassword(context.Background(), "not-an-email"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func collect(events <-chan domain.UploadEvent) []domain.UploadEvent {
	var out []domain.UploadEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestDirectoryService_UploadProfileImage_ProgressThenResponse(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{
		uploadFn: func(_ context.Context, form domain.ProfileImageForm, progress ports.ProgressFunc) (*domain.User, error) {
			for _, loaded := range []int64{0, 10, 10, 50, 40, 100} {
				progress(loaded, 100)
			}
			return &domain.User{Username: form.Username, ProfileImageURL: "http://img/ada.png"}, nil
		},
	})

	events := collect(svc.UploadProfileImage(context.Background(), domain.ProfileImageForm{
		Username: "ada",
		Image:    &domain.ImageFile{Name: "ada.png", Content: []byte("png")},
	}))

	if len(events) < 2 {
		t.Fatalf("expected progress and response events, got %+v", events)
	}
	last := events[len(events)-1]
	if last.Type != domain.UploadResponse || last.Err != nil || last.User == nil || last.User.ProfileImageURL == "" {
		t.Fatalf("unexpected terminal event: %+v", last)
	}

	prev := -1
	for _, ev := range events[:len(events)-1] {
		if ev.Type != domain.UploadProgress {
			t.Fatalf("response event before the end: %+v", ev)
		}
		if ev.Percent < prev {
			t.Fatalf("progress decreased: %d after %d", ev.Percent, prev)
		}
		prev = ev.Percent
	}
	if prev != 100 {
		t.Fatalf("expected final progress 100, got %d", prev)
	}
}

func TestDirectoryService_UploadProfileImage_Error(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{
		uploadFn: func(_ context.Context, _ domain.ProfileImageForm, progress ports.ProgressFunc) (*domain.User, error) {
			progress(5, -1)
			return nil, domain.NewBackendError(400, "Image too large")
		},
	})

	events := collect(svc.UploadProfileImage(context.Background(), domain.ProfileImageForm{
		Username: "ada",
		Image:    &domain.ImageFile{Name: "ada.png", Content: []byte("png")},
	}))

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %+v", events)
	}
	if events[0].Type != domain.UploadProgress || events[0].Percent != 0 {
		t.Fatalf("unknown total must report 0%%, got %+v", events[0])
	}
	if events[1].Type != domain.UploadResponse || domain.UserMessage(events[1].Err) != "Image too large" {
		t.Fatalf("unexpected terminal event: %+v", events[1])
	}
}

func TestDirectoryService_UploadProfileImage_Validation(t *testing.T) {
	svc := newDirectorySvc(newStubStore(), &stubBackend{})

	events := collect(svc.UploadProfileImage(context.Background(), domain.ProfileImageForm{Username: "ada"}))
	if len(events) != 1 || !errors.Is(events[0].Err, domain.ErrValidation) {
		t.Fatalf("expected a single validation failure, got %+v", events)
	}
}
