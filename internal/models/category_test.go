package models

import "testing"

func TestCategoryCreate_ToCategoryDefaults(t *testing.T) {
	t.Parallel()

	c := CategoryCreate{Name: " Work "}
	c.Normalize()
	cat := c.ToCategory()

	if cat.Name != "Work" {
		t.Errorf("Expected trimmed name, got %q", cat.Name)
	}
	if cat.Color != DefaultCategoryColor {
		t.Errorf("Expected default color %s, got %s", DefaultCategoryColor, cat.Color)
	}
	if !cat.IsActive {
		t.Error("Expected category active by default")
	}
	if cat.UsageFrequency != 0 {
		t.Errorf("Expected zero usage, got %d", cat.UsageFrequency)
	}
}

func TestCategoryUpdate_Apply(t *testing.T) {
	t.Parallel()

	cat := &Category{Name: "Work", Color: "#000000", IsActive: true, UsageFrequency: 4}
	inactive := false
	u := CategoryUpdate{IsActive: &inactive}
	u.Apply(cat)

	if cat.IsActive {
		t.Error("Expected category deactivated")
	}
	if cat.Name != "Work" || cat.Color != "#000000" || cat.UsageFrequency != 4 {
		t.Errorf("Expected other fields unchanged, got %+v", cat)
	}
}
