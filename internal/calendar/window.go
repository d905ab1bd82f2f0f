package calendar

// Window is a run of 7 consecutive days starting on a Sunday.
type Window [7]Date

// WindowFor returns the window holding ref: day 0 is the most recent Sunday
// on or before ref.
func WindowFor(ref Date) Window {
	start := ref.AddDays(-int(ref.Weekday()))

	var w Window
	for i := range w {
		w[i] = start.AddDays(i)
	}

	return w
}

func (w Window) Start() Date { return w[0] }
func (w Window) End() Date   { return w[6] }

// Days returns the window's dates in order.
func (w Window) Days() []Date {
	return w[:]
}

// Next returns the following window.
func (w Window) Next() Window {
	return WindowFor(w.Start().AddDays(7))
}

// Prev returns the preceding window.
func (w Window) Prev() Window {
	return WindowFor(w.Start().AddDays(-7))
}

func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start()) && !d.After(w.End())
}

// Index returns the position of d in the window, or -1.
func (w Window) Index(d Date) int {
	for i, day := range w {
		if day == d {
			return i
		}
	}

	return -1
}
