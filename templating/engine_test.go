package templating_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/fml/loader"
	"github.com/byte4ever/fml/syntax"
	"github.com/byte4ever/fml/templating"
	"github.com/byte4ever/fml/value"
)

const casesDir = "testdata/cases"

// writeTemp creates a temporary file with content and
// returns its path.
func writeTemp(
	tb testing.TB,
	dir string,
	name string,
	content string,
) string {
	tb.Helper()

	pa := filepath.Join(dir, name)
	require.NoError(tb, os.MkdirAll(filepath.Dir(pa), 0o700))
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}

func mustObject(tb testing.TB, m map[string]any) *value.Object {
	tb.Helper()

	obj, err := value.ObjectFromMap(m)
	require.NoError(tb, err)

	return obj
}

func alice(tb testing.TB) *value.Object {
	tb.Helper()

	return mustObject(tb, map[string]any{"name": "Alice"})
}

func TestParseFML_cases(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name string
		file string
		vars map[string]any
		opts templating.Options
		want string
	}{
		{
			name: "simple",
			file: "simple.fml",
			vars: map[string]any{"name": "Alice"},
			want: "Welcome, Alice! Let me walk you through the basics.\n" +
				"<instructions>\n" +
				"This is a tag with instructions.\n" +
				"</instructions>",
		},
		{
			name: "no tags",
			file: "no-tags.fml",
			want: "This file has no tags at all.",
		},
		{
			name: "include forms",
			file: "include.fml",
			want: "This file contains an include in different xml formats\n" +
				"This file has no tags at all.\n" +
				"This file has no tags at all.\n" +
				"This file has no tags at all.",
		},
		{
			name: "nested include",
			file: "nested-include.fml",
			want: "This file contains a nested include\n" +
				"<tag>\n" +
				"This file contains an include in different xml formats\n" +
				"This file has no tags at all.\n" +
				"This file has no tags at all.\n" +
				"This file has no tags at all.\n" +
				"</tag>",
		},
		{
			name: "nested include with variables",
			file: "nested-include-with-var.fml",
			vars: map[string]any{"name": "Alice"},
			want: "This file contains a nested include with variables\n" +
				"<tag>\n" +
				"This file contains an include\n" +
				"Hello, Alice! Let me walk you through the basics.\n" +
				"</tag>",
		},
		{
			name: "bbcode includes",
			file: "bbcode-include.fml",
			opts: templating.Options{TagStyle: "bbcode"},
			want: "This file contains three BBCode-style includes:\n" +
				"This file has no tags at all.\n" +
				"This file has no tags at all.\n" +
				"This file has no tags at all.\n" +
				"End of BBCode include test.",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := templating.ParseFML(
				context.Background(),
				filepath.Join(casesDir, tc.file),
				mustObject(t, tc.vars),
				tc.opts,
			)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseFML_base_dir(t *testing.T) {
	t.Parallel()

	got, err := templating.ParseFML(
		context.Background(),
		"simple.fml",
		alice(t),
		templating.Options{BaseDir: casesDir},
	)
	require.NoError(t, err)
	assert.Equal(t,
		"Welcome, Alice! Let me walk you through the basics.\n"+
			"<instructions>\n"+
			"This is a tag with instructions.\n"+
			"</instructions>",
		got,
	)
}

func TestParseFML_object_variable(t *testing.T) {
	t.Parallel()

	vars := value.NewObject(
		value.Member{Key: "myObject", Value: value.NewObject(
			value.Member{Key: "id", Value: value.Number(123)},
			value.Member{Key: "status", Value: value.String("active")},
			value.Member{Key: "tags", Value: value.Array{
				value.String("a"), value.String("b"),
			}},
		)},
		value.Member{Key: "person", Value: value.NewObject(
			value.Member{Key: "name", Value: value.String("Alice")},
			value.Member{Key: "age", Value: value.Number(30)},
		)},
	)

	got, err := templating.ParseFML(
		context.Background(),
		filepath.Join(casesDir, "object-variable.fml"),
		vars,
		templating.Options{},
	)
	require.NoError(t, err)
	assert.Equal(t, `Here is a JSON object:
{
  "id": 123,
  "status": "active",
  "tags": [
    "a",
    "b"
  ]
}

Here we are accessing values of the object:
Alice: 30

Here's an array:
[
  "a",
  "b"
]

Here we are accessing an array value:
a`, got)
}

func TestParseFML_malformed(t *testing.T) {
	t.Parallel()

	_, err := templating.ParseFML(
		context.Background(),
		filepath.Join(casesDir, "malformed.fml"),
		nil,
		templating.Options{},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, syntax.ErrSyntax)
	assert.Regexp(t, `^FML syntax error in .*malformed\.fml: Malformed XML: `, err.Error())

	var se *syntax.SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Line)
}

func TestParseFML_undefined_variable(t *testing.T) {
	t.Parallel()

	file := filepath.Join(casesDir, "undefined-variable.fml")
	vars := mustObject(t, map[string]any{
		"user": map[string]any{"name": "Bob"},
	})

	_, err := templating.ParseFML(context.Background(), file, vars, templating.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, templating.ErrUndefinedVariable)
	assert.ErrorIs(t, err, value.ErrUndefined)

	var ue *templating.UndefinedVariableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "user.email", ue.Variable)
	assert.Equal(t, file, ue.File)
	assert.Equal(t, 2, ue.Line)
	assert.Equal(t, 17, ue.Col)
	assert.Contains(t, err.Error(), `FML undefined variable "user.email" in `+file)
}

func TestParseFML_missing_include(t *testing.T) {
	t.Parallel()

	from := filepath.Join(casesDir, "missing-include.fml")

	_, err := templating.ParseFML(context.Background(), from, nil, templating.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, templating.ErrFileNotFound)
	assert.ErrorIs(t, err, loader.ErrNotFound)

	var fe *templating.FileNotFoundError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, filepath.Join(casesDir, "partials", "nope.fml"), fe.Path)
	assert.Equal(t, from, fe.From)
	assert.Equal(t,
		"FML file not found: "+fe.Path+" (included from "+from+")",
		err.Error(),
	)
}

func TestParseFML_missing_file(t *testing.T) {
	t.Parallel()

	_, err := templating.ParseFML(
		context.Background(), "nope.fml", nil,
		templating.Options{BaseDir: casesDir},
	)
	require.ErrorIs(t, err, templating.ErrFileNotFound)
	assert.Equal(t,
		"FML file not found: "+filepath.Join(casesDir, "nope.fml"),
		err.Error(),
	)
}

func TestParseFML_include_cycle(t *testing.T) {
	t.Parallel()

	_, err := templating.ParseFML(
		context.Background(), "cycle-a.fml", nil,
		templating.Options{BaseDir: casesDir},
	)
	require.ErrorIs(t, err, templating.ErrIncludeCycle)

	var ce *templating.IncludeCycleError
	require.True(t, errors.As(err, &ce))

	a := filepath.Join(casesDir, "cycle-a.fml")
	b := filepath.Join(casesDir, "cycle-b.fml")
	assert.Equal(t, []string{a, b, a}, ce.Chain)
}

func TestParseFML_unknown_tag_style(t *testing.T) {
	t.Parallel()

	_, err := templating.ParseFML(
		context.Background(), "simple.fml", nil,
		templating.Options{BaseDir: casesDir, TagStyle: "html"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown tag style "html"`)
}

func TestParseFML_cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := templating.ParseFML(ctx, "simple.fml", nil, templating.Options{BaseDir: casesDir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngine_parallel_matches_sequential(t *testing.T) {
	t.Parallel()

	sequential := templating.Engine{BaseDir: casesDir}

	want, err := sequential.ParseFile(context.Background(), "siblings.fml", alice(t))
	require.NoError(t, err)
	assert.Contains(t, want, "<list>\nHello, Alice! Let me walk you through the basics.\n")
	assert.Contains(t, want, "</instructions>\n</list>")

	for _, parallelism := range []int{2, 3, 8} {
		en := templating.Engine{BaseDir: casesDir, Parallelism: parallelism}

		for range 10 {
			got, err := en.ParseFile(context.Background(), "siblings.fml", alice(t))
			require.NoError(t, err)
			assert.Equal(t, want, got, "parallelism %d", parallelism)
		}
	}
}

func TestEngine_parallel_reports_first_failure(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"main.fml": {Data: []byte(
			`<include path="ok.fml"/><include path="first.fml"/>` +
				`<include path="ok.fml"/><include path="second.fml"/>`,
		)},
		"ok.fml": {Data: []byte("ok")},
	}

	en := templating.Engine{Loader: loader.FS{FS: fsys}, Parallelism: 4}

	for range 10 {
		_, err := en.ParseFile(context.Background(), "main.fml", nil)
		require.ErrorIs(t, err, templating.ErrFileNotFound)

		var fe *templating.FileNotFoundError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "first.fml", fe.Path)
		assert.Equal(t, "main.fml", fe.From)
	}
}

func TestEngine_fs_loader(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"prompts/main.fml":          {Data: []byte("[include path=\"parts/a.fml\"/]\n")},
		"prompts/parts/a.fml":       {Data: []byte("A {{ x }} [include path=\"../shared/b.fml\"/]\n")},
		"prompts/shared/b.fml":      {Data: []byte("[b]\nB\n[/b]\n")},
		"prompts/shared/unused.fml": {Data: []byte("unused")},
	}

	en := templating.Engine{Loader: loader.FS{FS: fsys}, TagStyle: "bbcode"}

	got, err := en.ParseFile(
		context.Background(), "prompts/main.fml",
		mustObject(t, map[string]any{"x": 1}),
	)
	require.NoError(t, err)
	assert.Equal(t, "A 1 [b]\nB\n[/b]", got)
}

func TestEngine_RenderString(t *testing.T) {
	t.Parallel()

	en := templating.Engine{}
	vars := alice(t)

	got, err := en.RenderString(
		context.Background(), "inline.fml",
		"Hi {{ name }}\n<include path=\"partials/hello.fml\" />\n",
		vars, casesDir,
	)
	require.NoError(t, err)
	assert.Equal(t, "Hi Alice\nHello, Alice! Let me walk you through the basics.\n", got)
}

func TestEngine_RenderString_identity(t *testing.T) {
	t.Parallel()

	en := templating.Engine{}

	for _, src := range []string{
		"", "plain", "trailing newline\n", "a < b and c > d", "x [y] z", "{ not a placeholder }",
	} {
		got, err := en.RenderString(context.Background(), "plain.fml", src, nil, ".")
		require.NoError(t, err)
		assert.Equal(t, src, got)
	}
}

func TestEngine_RenderString_tags(t *testing.T) {
	t.Parallel()

	en := templating.Engine{}

	testcases := []struct {
		name string
		src  string
		want string
	}{
		{"inline", "<a>x</a>", "<a>\nx\n</a>"},
		{"own lines", "<a>\nx\n</a>", "<a>\nx\n</a>"},
		{"empty", "<a></a>", "<a>\n\n</a>"},
		{"nested", "<a><b>x</b></a>", "<a>\n<b>\nx\n</b>\n</a>"},
		{"indented close", "<a>\n  x\n  </a>", "<a>\n  x\n</a>"},
		{"crlf", "<a>\r\nx\r\n</a>", "<a>\nx\n</a>"},
		{"blank lines kept", "<a>\n\nx\n\n</a>", "<a>\n\nx\n\n</a>"},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := en.RenderString(context.Background(), "tags.fml", tc.src, nil, ".")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEngine_Expand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tplPath := writeTemp(t, dir, "tpl.fml", "<greeting>\nHello {{ name }}!\n</greeting>\n")
	outPath := filepath.Join(dir, "out", "result.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0o700))

	en := templating.Engine{}
	require.NoError(t, en.Expand(context.Background(), tplPath, outPath, alice(t), false))

	got, err := os.ReadFile(outPath) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "<greeting>\nHello Alice!\n</greeting>", string(got))

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, en.Expand(context.Background(), tplPath, outPath, alice(t), true))

	info, err = os.Stat(outPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestEngine_Expand_unchanged_output(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tplPath := writeTemp(t, dir, "tpl.fml", "same {{ name }}")
	outPath := writeTemp(t, dir, "out.txt", "same Alice")

	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(outPath, past, past))

	en := templating.Engine{}
	require.NoError(t, en.Expand(context.Background(), tplPath, outPath, alice(t), false))

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past))

	require.NoError(t, en.Expand(
		context.Background(), tplPath, outPath,
		mustObject(t, map[string]any{"name": "Bob"}), false,
	))

	got, err := os.ReadFile(outPath) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "same Bob", string(got))
}

func TestEngine_Expand_error_keeps_output(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tplPath := writeTemp(t, dir, "tpl.fml", "{{ missing }}")
	outPath := writeTemp(t, dir, "out.txt", "previous")

	en := templating.Engine{}
	err := en.Expand(context.Background(), tplPath, outPath, nil, false)
	require.ErrorIs(t, err, templating.ErrUndefinedVariable)

	got, err := os.ReadFile(outPath) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))
}

func TestTrimHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "x", templating.TrimLeadingBreakForTest("\nx"))
	assert.Equal(t, "x", templating.TrimLeadingBreakForTest("  \r\nx"))
	assert.Equal(t, "  x", templating.TrimLeadingBreakForTest("  x"))
	assert.Equal(t, "\nx", templating.TrimLeadingBreakForTest("\n\nx"))

	assert.Equal(t, "x", templating.TrimTrailingBreakForTest("x\n"))
	assert.Equal(t, "x", templating.TrimTrailingBreakForTest("x\r\n\t"))
	assert.Equal(t, "x  ", templating.TrimTrailingBreakForTest("x  "))

	assert.Equal(t, "a\n", templating.TrimFinalNewlineForTest("a\n\n"))
	assert.Equal(t, "a", templating.TrimFinalNewlineForTest("a\r\n"))
	assert.Equal(t, "a", templating.TrimFinalNewlineForTest("a"))
}
