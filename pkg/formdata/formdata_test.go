package formdata

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/vango-dev/htms/pkg/dom"
)

func parseForm(t *testing.T, markup string) (*dom.Document, *html.Node) {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	forms, err := doc.QueryAll("//form")
	if err != nil || len(forms) == 0 {
		t.Fatalf("no form in markup: %v", err)
	}
	return doc, forms[0]
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   []Field
	}{
		{
			name:   "declaration order",
			markup: `<form><input name="a" value="1"><input name="b" value="2"></form>`,
			want:   []Field{{"a", "1"}, {"b", "2"}},
		},
		{
			name:   "text input without value",
			markup: `<form><input name="q"></form>`,
			want:   []Field{{"q", ""}},
		},
		{
			name: "checkboxes",
			markup: `<form>
				<input type="checkbox" name="author" value="Ann" checked>
				<input type="checkbox" name="author" value="Bob">
				<input type="checkbox" name="author" value="Cy" checked>
				<input type="checkbox" name="flag" checked>
			</form>`,
			want: []Field{{"author", "Ann"}, {"author", "Cy"}, {"flag", "on"}},
		},
		{
			name: "radio",
			markup: `<form>
				<input type="radio" name="size" value="s">
				<input type="radio" name="size" value="m" checked>
			</form>`,
			want: []Field{{"size", "m"}},
		},
		{
			name: "skipped controls",
			markup: `<form>
				<input value="unnamed">
				<input name="off" value="x" disabled>
				<input type="submit" name="go" value="Go">
				<input type="reset" name="r">
				<button name="b" value="1">B</button>
				<datalist><option value="d"></option><input name="hidden-in-datalist" value="z"></datalist>
				<input name="kept" value="k">
			</form>`,
			want: []Field{{"kept", "k"}},
		},
		{
			name: "select single and multiple",
			markup: `<form>
				<select name="one"><option>first</option><option value="2" selected>second</option></select>
				<select name="none"><option disabled>x</option><option> spaced   text </option></select>
				<select name="many" multiple>
					<optgroup label="g"><option value="a" selected>A</option></optgroup>
					<option value="b">B</option>
					<option value="c" selected>C</option>
				</select>
			</form>`,
			want: []Field{{"one", "2"}, {"none", "spaced text"}, {"many", "a"}, {"many", "c"}},
		},
		{
			name:   "textarea",
			markup: "<form><textarea name=\"note\">line one\nline two</textarea></form>",
			want:   []Field{{"note", "line one\nline two"}},
		},
		{
			name: "disabled fieldset keeps first legend",
			markup: `<form>
				<fieldset disabled>
					<legend><input name="legend" value="yes"></legend>
					<input name="inside" value="no">
				</fieldset>
				<input name="after" value="1">
			</form>`,
			want: []Field{{"legend", "yes"}, {"after", "1"}},
		},
		{
			name:   "charset",
			markup: `<form><input type="hidden" name="_charset_"></form>`,
			want:   []Field{{"_charset_", "UTF-8"}},
		},
		{
			name:   "nested wrappers",
			markup: `<form><div><label>Q <input name="q" value="x"></label></div><p><input name="r" value="y"></p></form>`,
			want:   []Field{{"q", "x"}, {"r", "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, form := parseForm(t, tt.markup)
			got := Collect(form)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Collect mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		want   string
	}{
		{"empty", nil, ""},
		{"simple", []Field{{"a", "1"}, {"b", "2"}}, "a=1&b=2"},
		{"space becomes plus", []Field{{"q", "hello world"}}, "q=hello+world"},
		{"reserved", []Field{{"q", "a&b=c+d/e?f#g"}}, "q=a%26b%3Dc%2Bd%2Fe%3Ff%23g"},
		{"pass through", []Field{{"k", "*-._"}}, "k=*-._"},
		{"tilde escaped", []Field{{"k", "~"}}, "k=%7E"},
		{"utf8", []Field{{"name", "Zoë"}}, "name=Zo%C3%AB"},
		{"repeated keys keep order", []Field{{"a", "2"}, {"b", "x"}, {"a", "1"}}, "a=2&b=x&a=1"},
		{"empty value", []Field{{"q", ""}}, "q="},
		{"newline", []Field{{"t", "a\nb"}}, "t=a%0Ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.fields); got != tt.want {
				t.Errorf("Encode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseEdit(t *testing.T) {
	tests := []struct {
		in      string
		want    Edit
		wantErr bool
	}{
		{in: "q=foo", want: Edit{Name: "q", Value: "foo"}},
		{in: "q=", want: Edit{Name: "q"}},
		{in: "q=a=b", want: Edit{Name: "q", Value: "a=b"}},
		{in: "!author=Ann", want: Edit{Name: "author", Value: "Ann", Uncheck: true}},
		{in: "novalue", wantErr: true},
		{in: "=x", wantErr: true},
		{in: "!=x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEdit(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseEdit mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply(t *testing.T) {
	_, form := parseForm(t, `<form>
		<input name="q" value="old">
		<textarea name="note">before</textarea>
		<select name="sort"><option value="asc" selected>Asc</option><option value="desc">Desc</option></select>
		<select name="tags" multiple><option value="a" selected>A</option><option value="b">B</option></select>
		<input type="checkbox" name="author" value="Ann">
		<input type="checkbox" name="author" value="Bob" checked>
		<input type="radio" name="size" value="s" checked>
		<input type="radio" name="size" value="m">
	</form>`)

	err := Apply(form,
		Edit{Name: "q", Value: "foo bar"},
		Edit{Name: "note", Value: "after"},
		Edit{Name: "sort", Value: "desc"},
		Edit{Name: "tags", Value: "b"},
		Edit{Name: "author", Value: "Ann"},
		Edit{Name: "author", Value: "Bob", Uncheck: true},
		Edit{Name: "size", Value: "m"},
	)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []Field{
		{"q", "foo bar"},
		{"note", "after"},
		{"sort", "desc"},
		{"tags", "a"},
		{"tags", "b"},
		{"author", "Ann"},
		{"size", "m"},
	}
	if diff := cmp.Diff(want, Collect(form)); diff != "" {
		t.Errorf("Collect after Apply (-want +got):\n%s", diff)
	}
}

func TestApply_NoControl(t *testing.T) {
	_, form := parseForm(t, `<form><input name="q"><select name="s"><option value="a">A</option></select><input type="checkbox" name="c" value="x"></form>`)

	for _, e := range []Edit{
		{Name: "missing", Value: "x"},
		{Name: "s", Value: "zzz"},
		{Name: "c", Value: "y"},
	} {
		if err := Apply(form, e); !errors.Is(err, ErrNoControl) || !errors.Is(err, dom.ErrNotFound) {
			t.Errorf("Apply(%+v) err = %v, want ErrNoControl", e, err)
		}
	}
}
