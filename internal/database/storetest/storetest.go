// Package storetest holds a conformance suite run against every database.Store implementation.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
)

// Run exercises store, which must be migrated and empty.
func Run(t *testing.T, store database.Store) {
	t.Helper()
	ctx := context.Background()

	template := func(b ...byte) fingerprint.Template {
		t.Helper()
		tpl, err := fingerprint.NewTemplate(b)
		if err != nil {
			t.Fatalf("NewTemplate: %v", err)
		}
		return tpl
	}

	var firstAlice, secondAlice, bob int64

	t.Run("PutAndList", func(t *testing.T) {
		var err error
		if firstAlice, err = store.Put(ctx, "Alice", template(1, 2, 3)); err != nil {
			t.Fatalf("put: %v", err)
		}
		if bob, err = store.Put(ctx, "Bob", template(4, 5, 6)); err != nil {
			t.Fatalf("put: %v", err)
		}
		if secondAlice, err = store.Put(ctx, "Alice", template(7, 8, 9)); err != nil {
			t.Fatalf("put: %v", err)
		}

		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		want := []database.IdentitySummary{
			{ID: firstAlice, Name: "Alice"},
			{ID: bob, Name: "Bob"},
			{ID: secondAlice, Name: "Alice"},
		}
		if len(list) != len(want) {
			t.Fatalf("List() = %v, want %v", list, want)
		}
		for i := range want {
			if list[i] != want[i] {
				t.Errorf("List()[%d] = %v, want %v", i, list[i], want[i])
			}
		}
	})

	t.Run("GetAllRoundTripsTemplates", func(t *testing.T) {
		all, err := store.GetAll(ctx)
		if err != nil {
			t.Fatalf("get all: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("GetAll() returned %d identities, want 3", len(all))
		}
		if all[0].ID != firstAlice || !all[0].Template.Equal(template(1, 2, 3)) {
			t.Errorf("GetAll()[0] = %d %v, want first Alice", all[0].ID, all[0].Template.Bytes())
		}
		if all[1].ID != bob || !all[1].Template.Equal(template(4, 5, 6)) {
			t.Errorf("GetAll()[1] = %d %v, want Bob", all[1].ID, all[1].Template.Bytes())
		}
	})

	t.Run("UpdateTemplateActsOnFirstName", func(t *testing.T) {
		ok, err := store.UpdateTemplate(ctx, "Alice", template(10))
		if err != nil || !ok {
			t.Fatalf("UpdateTemplate() = %v, %v, want true", ok, err)
		}
		ok, err = store.UpdateTemplate(ctx, "Mallory", template(11))
		if err != nil || ok {
			t.Errorf("UpdateTemplate(unknown) = %v, %v, want false, nil", ok, err)
		}

		all, _ := store.GetAll(ctx)
		if !all[0].Template.Equal(template(10)) {
			t.Errorf("first Alice template = %v, want updated", all[0].Template.Bytes())
		}
		if !all[2].Template.Equal(template(7, 8, 9)) {
			t.Errorf("second Alice template = %v, want untouched", all[2].Template.Bytes())
		}
	})

	t.Run("SessionDaySequence", func(t *testing.T) {
		const date = "2026-03-02"

		if open, err := store.FindOpen(ctx, bob, date); err != nil || open != nil {
			t.Fatalf("FindOpen(empty) = %v, %v, want nil, nil", open, err)
		}

		first, err := store.OpenSession(ctx, bob, date, "09:00:00")
		if err != nil {
			t.Fatalf("OpenSession: %v", err)
		}
		open, err := store.FindOpen(ctx, bob, date)
		if err != nil || open == nil || open.ID != first || !open.IsOpen() {
			t.Fatalf("FindOpen() = %+v, %v, want open session %d", open, err, first)
		}
		if open.Date != date || open.TimeIn != "09:00:00" {
			t.Errorf("FindOpen() = %+v, want date %s time_in 09:00:00", open, date)
		}

		if err := store.CloseSession(ctx, first, "17:00:00"); err != nil {
			t.Fatalf("CloseSession: %v", err)
		}
		if err := store.CloseSession(ctx, first, "17:30:00"); !errors.Is(err, database.ErrSessionNotOpen) {
			t.Errorf("CloseSession(closed) error = %v, want ErrSessionNotOpen", err)
		}
		if open, _ := store.FindOpen(ctx, bob, date); open != nil {
			t.Errorf("FindOpen() after close = %+v, want nil", open)
		}

		second, err := store.OpenSession(ctx, bob, date, "18:00:00")
		if err != nil {
			t.Fatalf("OpenSession: %v", err)
		}
		if second == first {
			t.Error("third event reused the closed session")
		}
		if _, err := store.OpenSession(ctx, firstAlice, "2026-03-03", "08:00:00"); err != nil {
			t.Fatalf("OpenSession(other day): %v", err)
		}

		records, err := store.ListByDate(ctx, date)
		if err != nil {
			t.Fatalf("ListByDate: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("ListByDate() returned %d records, want 2", len(records))
		}
		if records[0].ID != first || records[0].TimeOut == nil || *records[0].TimeOut != "17:00:00" {
			t.Errorf("records[0] = %+v, want closed session %d", records[0], first)
		}
		if records[1].ID != second || !records[1].IsOpen() || records[1].Name != "Bob" {
			t.Errorf("records[1] = %+v, want Bob's open session %d", records[1], second)
		}
	})

	t.Run("DeleteKeepsSessions", func(t *testing.T) {
		ok, err := store.Delete(ctx, "Mallory")
		if err != nil || ok {
			t.Errorf("Delete(unknown) = %v, %v, want false, nil", ok, err)
		}
		ok, err = store.Delete(ctx, "Bob")
		if err != nil || !ok {
			t.Fatalf("Delete(Bob) = %v, %v, want true", ok, err)
		}

		list, _ := store.List(ctx)
		for _, summary := range list {
			if summary.ID == bob {
				t.Errorf("Bob still listed after delete: %v", list)
			}
		}

		records, err := store.ListByDate(ctx, "2026-03-02")
		if err != nil {
			t.Fatalf("ListByDate: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("ListByDate() after delete returned %d records, want 2", len(records))
		}
		if records[0].Name != "" {
			t.Errorf("records[0].Name = %q, want empty for deleted identity", records[0].Name)
		}
	})
}
