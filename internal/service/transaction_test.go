package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateReferenceUnique(t *testing.T) {
	const n = 1000

	var mu sync.Mutex
	seen := make(map[string]struct{}, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref, err := generateReference()
			if err != nil {
				t.Errorf("ошибка генерации номера: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if _, ok := seen[ref]; ok {
				t.Errorf("повторный номер транзакции: %s", ref)
			}
			seen[ref] = struct{}{}
		}()
	}
	wg.Wait()
}

func TestOrderAccountIDs(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

	t.Run("порядок не зависит от направления перевода", func(t *testing.T) {
		forward := orderAccountIDs(&a, &b)
		backward := orderAccountIDs(&b, &a)

		if len(forward) != 2 || len(backward) != 2 {
			t.Fatalf("ожидалось по два идентификатора, получено %d и %d", len(forward), len(backward))
		}
		for i := range forward {
			if forward[i] != backward[i] {
				t.Errorf("порядок блокировки расходится на позиции %d: %s и %s",
					i, forward[i], backward[i])
			}
		}
		if forward[0] != a {
			t.Errorf("первым должен идти меньший UUID, получено %s", forward[0])
		}
	})

	t.Run("одна сторона", func(t *testing.T) {
		ids := orderAccountIDs(&a, nil)
		if len(ids) != 1 || ids[0] != a {
			t.Errorf("ожидался один идентификатор %s, получено %v", a, ids)
		}

		ids = orderAccountIDs(nil, &b)
		if len(ids) != 1 || ids[0] != b {
			t.Errorf("ожидался один идентификатор %s, получено %v", b, ids)
		}
	})

	t.Run("совпадающие стороны не дублируются", func(t *testing.T) {
		ids := orderAccountIDs(&a, &a)
		if len(ids) != 1 {
			t.Errorf("ожидался один идентификатор, получено %d", len(ids))
		}
	})

	t.Run("обе стороны отсутствуют", func(t *testing.T) {
		if ids := orderAccountIDs(nil, nil); len(ids) != 0 {
			t.Errorf("ожидался пустой список, получено %v", ids)
		}
	})
}
