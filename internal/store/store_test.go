package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/model"
)

func sampleMemos() []model.Memo {
	return []model.Memo{
		{
			ID:              "b",
			UserID:          model.LocalUserID,
			Date:            "2024-09-17",
			Type:            model.MemoTypeAppointment,
			Content:         "추석 성묘",
			CreatedAt:       "2024-09-01T10:00:00Z",
			RepeatType:      model.RepeatYearlyLunar,
			ReminderTime:    "08:00",
			ReminderOffsets: []int{0, 60},
		},
		{
			ID:         "a",
			UserID:     model.LocalUserID,
			Date:       "2024-03-10",
			Type:       model.MemoTypeTodo,
			Content:    "dentist",
			Completed:  true,
			CreatedAt:  "2024-03-01T09:00:00Z",
			RepeatType: model.RepeatNone,
		},
	}
}

func runStoreTests(t *testing.T, s Store) {
	t.Helper()

	t.Run("Empty store", func(t *testing.T) {
		memos, err := s.LoadAllMemos()
		if err != nil {
			t.Fatalf("LoadAllMemos() error = %v", err)
		}
		if memos == nil || len(memos) != 0 {
			t.Errorf("LoadAllMemos() = %#v, want empty slice", memos)
		}

		profile, err := s.LoadProfile()
		if err != nil || profile != nil {
			t.Errorf("LoadProfile() = %v, %v, want nil, nil", profile, err)
		}
	})

	t.Run("Memos keep order and fields", func(t *testing.T) {
		want := sampleMemos()
		if err := s.SaveAllMemos(want); err != nil {
			t.Fatalf("SaveAllMemos() error = %v", err)
		}

		got, err := s.LoadAllMemos()
		if err != nil {
			t.Fatalf("LoadAllMemos() error = %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("LoadAllMemos() returned %d memos, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i].ID != want[i].ID || got[i].Content != want[i].Content ||
				got[i].RepeatType != want[i].RepeatType || got[i].Completed != want[i].Completed ||
				got[i].CreatedAt != want[i].CreatedAt || len(got[i].ReminderOffsets) != len(want[i].ReminderOffsets) {
				t.Errorf("memo %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("Save replaces the list", func(t *testing.T) {
		if err := s.SaveAllMemos(sampleMemos()[1:]); err != nil {
			t.Fatalf("SaveAllMemos() error = %v", err)
		}
		got, err := s.LoadAllMemos()
		if err != nil {
			t.Fatalf("LoadAllMemos() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "a" {
			t.Errorf("LoadAllMemos() = %+v, want only memo a", got)
		}

		if err := s.SaveAllMemos(nil); err != nil {
			t.Fatalf("SaveAllMemos(nil) error = %v", err)
		}
		if got, _ := s.LoadAllMemos(); len(got) != 0 {
			t.Errorf("LoadAllMemos() = %+v, want none", got)
		}
	})

	t.Run("Profile", func(t *testing.T) {
		p := &model.Profile{ID: "p1", Name: "홍길동", BirthDate: "1990-05-17", BirthTime: "07:30", NotificationsEnabled: true, DailyReminderTime: "09:00"}
		if err := s.SaveProfile(p); err != nil {
			t.Fatalf("SaveProfile() error = %v", err)
		}

		p2 := *p
		p2.Name = "김철수"
		if err := s.SaveProfile(&p2); err != nil {
			t.Fatalf("SaveProfile() error = %v", err)
		}

		got, err := s.LoadProfile()
		if err != nil {
			t.Fatalf("LoadProfile() error = %v", err)
		}
		if got == nil || *got != p2 {
			t.Errorf("LoadProfile() = %+v, want %+v", got, p2)
		}

		if err := s.SaveProfile(nil); err == nil {
			t.Error("SaveProfile(nil) expected error, got nil")
		}
	})
}

func TestFileStore(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data"), logger)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	runStoreTests(t, s)
}

func TestSQLiteStore(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "daily-harmony.db"), logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()

	runStoreTests(t, s)
}

func TestFileStore_Format(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := s.SaveAllMemos(sampleMemos()); err != nil {
		t.Fatalf("SaveAllMemos() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, memosFile))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "[\n  {\n    \"id\": \"b\"") {
		t.Errorf("memos.json is not 2-space indented JSON:\n%s", data)
	}

	info, err := os.Stat(filepath.Join(dir, memosFile))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("memos.json permissions = %o, want 600", perm)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, memosFile), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := NewFileStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := s.LoadAllMemos(); err == nil {
		t.Error("LoadAllMemos() expected parse error, got nil")
	}
}

func TestOpen(t *testing.T) {
	logger := zap.NewNop()
	dir := t.TempDir()

	fs, err := Open(TypeFile, dir, "", logger)
	if err != nil {
		t.Fatalf("Open(file) error = %v", err)
	}
	if _, ok := fs.(*FileStore); !ok {
		t.Errorf("Open(file) = %T, want *FileStore", fs)
	}

	ss, err := Open(TypeSQLite, "", filepath.Join(dir, "x.db"), logger)
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	defer ss.Close()
	if _, ok := ss.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) = %T, want *SQLiteStore", ss)
	}

	if _, err := Open("redis", dir, "", logger); err == nil {
		t.Error("Open(redis) expected error, got nil")
	}
}
