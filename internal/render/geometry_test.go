package render

import "testing"

func TestOverlayTargetWidth(t *testing.T) {
	tests := []struct {
		width int
		scale float64
		want  int
	}{
		{1080, 0.25, 270},
		{1080, 0.33, 356},
		{720, 0.1, 72},
		{1919, 0.5, 959},
		{1080, 0.0005, 1},
		{1080, 1e-12, 1},
		{1080, 4, 4320},
		{1080, 1e30, MaxOverlayWidth},
		{0, 0.25, 1},
	}
	for _, tt := range tests {
		if got := OverlayTargetWidth(tt.width, tt.scale); got != tt.want {
			t.Errorf("OverlayTargetWidth(%d, %v) = %d, want %d", tt.width, tt.scale, got, tt.want)
		}
	}
}

func TestValidOverlayScale(t *testing.T) {
	tests := []struct {
		scale float64
		want  bool
	}{
		{0.25, true},
		{MinOverlayScale, true},
		{MaxOverlayScale, true},
		{0.0005, false},
		{0, false},
		{-1, false},
		{4.5, false},
		{1e30, false},
	}
	for _, tt := range tests {
		if got := ValidOverlayScale(tt.scale); got != tt.want {
			t.Errorf("ValidOverlayScale(%v) = %v, want %v", tt.scale, got, tt.want)
		}
	}
}

func TestNamedOverlayPosition(t *testing.T) {
	tests := []struct {
		name  string
		wantX string
		wantY string
	}{
		{"top-left", "20", "20"},
		{"top-right", "main_w-overlay_w-20", "20"},
		{"bottom-left", "20", "main_h-overlay_h-20"},
		{"bottom-right", "main_w-overlay_w-20", "main_h-overlay_h-20"},
		{"center", "(main_w-overlay_w)/2", "(main_h-overlay_h)/2"},
		{"nowhere", "main_w-overlay_w-20", "main_h-overlay_h-20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := NamedOverlayPosition(tt.name)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("NamedOverlayPosition(%q) = %s:%s, want %s:%s", tt.name, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestTextPosition(t *testing.T) {
	tests := []struct {
		name  string
		x, y  *float64
		wantX string
		wantY string
	}{
		{"top-left", nil, nil, "20", "40"},
		{"top-center", nil, nil, "(w-text_w)/2", "40"},
		{"top-right", nil, nil, "w-text_w-20", "40"},
		{"center", nil, nil, "(w-text_w)/2", "(h-text_h)/2"},
		{"bottom-center", nil, nil, "(w-text_w)/2", "h-text_h-40"},
		{"unknown", nil, nil, "(w-text_w)/2", "40"},
		{"center", ptr(25), ptr(50), "(w*0.25-text_w/2)", "(h*0.5-text_h/2)"},
		{"only x ignored", ptr(25), nil, "(w-text_w)/2", "40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := TextPosition(tt.name, tt.x, tt.y)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("TextPosition() = %s:%s, want %s:%s", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestOverlayPosition(t *testing.T) {
	x, y := OverlayPosition(70, 12.5)
	if x != "(main_w*0.7)" || y != "(main_h*0.125)" {
		t.Errorf("OverlayPosition(70, 12.5) = %s:%s", x, y)
	}
}
