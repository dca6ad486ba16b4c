package regression

import "fmt"

// fakeFrame is a hand-built frame for exercising the encoder and the
// fitters without dragging in the feature pipeline.
type fakeFrame struct {
	n    int
	nums map[string][]float64
	cats map[string][]string
}

func (f *fakeFrame) Len() int { return f.n }

func (f *fakeFrame) Numeric(name string) ([]float64, error) {
	v, ok := f.nums[name]
	if !ok {
		return nil, fmt.Errorf("unknown numeric column %q", name)
	}
	return v, nil
}

func (f *fakeFrame) Levels(name string) ([]string, error) {
	v, ok := f.cats[name]
	if !ok {
		return nil, fmt.Errorf("unknown categorical column %q", name)
	}
	return v, nil
}
