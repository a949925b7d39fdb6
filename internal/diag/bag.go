package diag

import (
	"sort"
	"sync"
)

// Bag is a bounded, goroutine-safe collection of diagnostics.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Errorf is a shortcut for adding a SevError diagnostic.
func (b *Bag) Errorf(code Code, file string, line int, msg string) bool {
	return b.Add(Diagnostic{Severity: SevError, Code: code, Message: msg, File: file, Line: line})
}

// Warnf is a shortcut for adding a SevWarning diagnostic.
func (b *Bag) Warnf(code Code, file string, line int, msg string) bool {
	return b.Add(Diagnostic{Severity: SevWarning, Code: code, Message: msg, File: file, Line: line})
}

func (b *Bag) Cap() int {
	return b.max
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	return b.count(SevError) > 0
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	return b.count(SevWarning) > 0
}

func (b *Bag) count(floor Severity) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= floor {
			n++
		}
	}
	return n
}

// длина
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	return out
}

// Merge объединяет диагностики из другого Bag.
// Увеличивает max, если нужно вместить все элементы.
func (b *Bag) Merge(other *Bag) {
	if other == nil || other == b {
		return
	}
	items := other.Items()
	b.mu.Lock()
	defer b.mu.Unlock()
	if total := len(b.items) + len(items); total > b.max {
		b.max = total
	}
	b.items = append(b.items, items...)
}

// Sort сортирует диагностики по: file, line, severity (desc), code (asc)
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.File != dj.File {
			return di.File < dj.File
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
