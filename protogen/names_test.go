package protogen

import "testing"

func TestCamelCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"one", "One"},
		{"one_two", "OneTwo"},
		{"_my_field_name_2", "XMyFieldName_2"},
		{"Something_Capped", "Something_Capped"},
		{"my_Name", "My_Name"},
		{"OneTwo", "OneTwo"},
		{"_", "X"},
		{"_a_", "XA_"},
		{"one.two", "OneTwo"},
		{"one.Two", "One_Two"},
		{"one_two.three_four", "OneTwoThreeFour"},
		{"one_two.Three_four", "OneTwo_ThreeFour"},
		{"_one._two", "XOne_XTwo"},
		{"SCREAMING_SNAKE_CASE", "SCREAMING_SNAKE_CASE"},
		{"double__underscore", "Double_Underscore"},
	}
	for _, tc := range tests {
		if got := camelCase(tc.in); got != tc.want {
			t.Errorf("camelCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLowerCamel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"one", "one"},
		{"one_two", "oneTwo"},
		{"x_id", "xId"},
	}
	for _, tc := range tests {
		if got := lowerCamel(tc.in); got != tc.want {
			t.Errorf("lowerCamel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanScalaName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"foo", "foo"},
		{"foo-bar", "foo_bar"},
		{"2fast", "_2fast"},
		{"foo.bar", "foo_bar"},
	}
	for _, tc := range tests {
		if got := cleanScalaName(tc.in); got != tc.want {
			t.Errorf("cleanScalaName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"foo/bar/baz.proto", "baz"},
		{"baz.proto", "baz"},
		{"com.example.orders", "com.example.orders"},
		{"a/b/com.example.orders", "com.example.orders"},
	}
	for _, tc := range tests {
		if got := baseName(tc.in); got != tc.want {
			t.Errorf("baseName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPackagePathIdent(t *testing.T) {
	p := PackagePath("com.example.orders")
	id := p.Ident("Order")
	if id.Name != "Order" || id.PackagePath != p {
		t.Errorf("Ident() = %+v, want Name=Order PackagePath=%q", id, p)
	}
}
