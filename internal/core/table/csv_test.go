package table

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// header13 returns a 13-column header: c0..c10, "Email", "Stage".
func header13() []string {
	h := make([]string, 13)
	for i := range h {
		h[i] = "c" + strconv.Itoa(i)
	}
	h[11] = "Email"
	h[12] = "Stage"
	return h
}

// row13 returns a 13-cell row with the given subject and label.
func row13(subject, stage string) []string {
	r := make([]string, 13)
	r[0] = "id-" + subject
	r[11] = subject
	r[12] = stage
	return r
}

func encodeCSV(t *testing.T, records [][]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(records))
	return buf.Bytes()
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad_WithAndWithoutBOM(t *testing.T) {
	records := [][]string{header13(), row13("hello", ""), row13("bye", "Passed")}
	plain := encodeCSV(t, records)

	for name, data := range map[string][]byte{
		"no bom": plain,
		"bom":    append(append([]byte{}, utf8BOM...), plain...),
	} {
		t.Run(name, func(t *testing.T) {
			tbl, err := Load(writeFile(t, data), DefaultColumns)
			require.NoError(t, err)

			assert.False(t, tbl.Lenient)
			assert.Equal(t, "c0", tbl.Header[0], "BOM must not leak into the first header cell")
			assert.Equal(t, 2, tbl.Len())
			assert.Equal(t, 13, tbl.Width())
			assert.Equal(t, "hello", tbl.Cell(0, 11))
			assert.Equal(t, "Passed", tbl.Cell(1, 12))
		})
	}
}

func TestLoad_KeepsCellsAsText(t *testing.T) {
	r := row13("007", "")
	r[1] = "2024-01-02"
	r[2] = "1e3"
	tbl, err := Load(writeFile(t, encodeCSV(t, [][]string{header13(), r})), DefaultColumns)
	require.NoError(t, err)

	assert.Equal(t, "007", tbl.Cell(0, 11))
	assert.Equal(t, "2024-01-02", tbl.Cell(0, 1))
	assert.Equal(t, "1e3", tbl.Cell(0, 2))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), DefaultColumns)

	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EmptyFile(t *testing.T) {
	_, err := Load(writeFile(t, nil), DefaultColumns)

	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Contains(t, err.Error(), "no header row")
}

func TestLoad_TooFewColumns(t *testing.T) {
	records := [][]string{
		{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
		{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
	}
	tbl, err := Load(writeFile(t, encodeCSV(t, records)), DefaultColumns)

	assert.Nil(t, tbl)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, 10, schemaErr.Columns)
	assert.Equal(t, 13, schemaErr.Required)
}

func TestLoad_CustomColumns(t *testing.T) {
	records := [][]string{{"subject", "stage"}, {"hi", ""}}
	tbl, err := Load(writeFile(t, encodeCSV(t, records)), Columns{Subject: 0, Label: 1})
	require.NoError(t, err)
	assert.Equal(t, "hi", tbl.Cell(0, 0))
}

func TestLoad_LenientFallback(t *testing.T) {
	t.Run("invalid utf-8 is replaced", func(t *testing.T) {
		data := encodeCSV(t, [][]string{header13(), row13("caf\xe9", "")})
		tbl, err := Load(writeFile(t, data), DefaultColumns)
		require.NoError(t, err)

		assert.True(t, tbl.Lenient)
		assert.Equal(t, "caf\uFFFD", tbl.Cell(0, 11))
	})

	t.Run("short rows are padded", func(t *testing.T) {
		short := row13("short", "")[:12]
		data := encodeCSV(t, [][]string{header13(), row13("full", "Passed"), short})
		tbl, err := Load(writeFile(t, data), DefaultColumns)
		require.NoError(t, err)

		assert.True(t, tbl.Lenient)
		require.Len(t, tbl.Rows[1], 13)
		assert.Equal(t, "", tbl.Cell(1, 12))
		assert.True(t, tbl.IsBlank(1, 12))
	})

	t.Run("bare quotes are tolerated", func(t *testing.T) {
		data := encodeCSV(t, [][]string{header13()})
		data = append(data, []byte(`a,b,c,d,e,f,g,h,i,j,k,he said "hi",`+"\n")...)
		tbl, err := Load(writeFile(t, data), DefaultColumns)
		require.NoError(t, err)

		assert.True(t, tbl.Lenient)
		assert.Equal(t, `he said "hi"`, tbl.Cell(0, 11))
	})

	t.Run("utf-16 with bom", func(t *testing.T) {
		plain := encodeCSV(t, [][]string{header13(), row13("wide", "")})
		data, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes(plain)
		require.NoError(t, err)

		tbl, err := Load(writeFile(t, data), DefaultColumns)
		require.NoError(t, err)

		assert.True(t, tbl.Lenient)
		assert.Equal(t, "c0", tbl.Header[0])
		assert.Equal(t, "wide", tbl.Cell(0, 11))
	})

	t.Run("long rows fail both passes", func(t *testing.T) {
		long := append(row13("long", ""), "extra")
		data := encodeCSV(t, [][]string{header13(), long})
		_, err := Load(writeFile(t, data), DefaultColumns)

		var readErr *ReadError
		require.ErrorAs(t, err, &readErr)
		assert.Contains(t, err.Error(), "strict decode")
		assert.Contains(t, err.Error(), "lenient decode")
	})
}

func TestSave_WritesBOMAndAllRows(t *testing.T) {
	tbl := &Table{
		Header: header13(),
		Rows:   [][]string{row13("one", "Passed"), row13("two", "")},
	}
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, Save(tbl, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM), "expected BOM prefix")

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, header13(), records[0])
	assert.Equal(t, "Passed", records[1][12])
	assert.Equal(t, "", records[2][12])
}

func TestSave_RoundTrip(t *testing.T) {
	tricky := row13("line one\nline two, with \"quotes\"", "Bounceback")
	tricky[3] = " leading space"
	records := [][]string{header13(), row13("plain", "Passed"), tricky}
	path := writeFile(t, append(append([]byte{}, utf8BOM...), encodeCSV(t, records)...))

	first, err := Load(path, DefaultColumns)
	require.NoError(t, err)
	require.NoError(t, Save(first, path))

	second, err := Load(path, DefaultColumns)
	require.NoError(t, err)
	assert.Equal(t, first.Header, second.Header)
	assert.Equal(t, first.Rows, second.Rows)

	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, Save(second, path))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "saving an unchanged table must be byte-stable")
}

func TestSave_PreservesFileMode(t *testing.T) {
	path := writeFile(t, encodeCSV(t, [][]string{header13()}))
	require.NoError(t, os.Chmod(path, 0o600))

	require.NoError(t, Save(&Table{Header: header13()}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSave_Failure(t *testing.T) {
	tbl := &Table{Header: header13(), Rows: [][]string{row13("x", "Passed")}}
	path := filepath.Join(t.TempDir(), "missing-dir", "out.csv")

	err := Save(tbl, path)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, path, writeErr.Path)
	assert.Equal(t, "Passed", tbl.Cell(0, 12), "in-memory table must be untouched")
}

func TestSave_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	require.NoError(t, Save(&Table{Header: header13()}, path))
	require.NoError(t, Save(&Table{Header: header13()}, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.csv", entries[0].Name())
}

func TestStore(t *testing.T) {
	path := writeFile(t, encodeCSV(t, [][]string{header13(), row13("a", "")}))
	store := NewStore(path, DefaultColumns)
	assert.Equal(t, path, store.Path())
	assert.Equal(t, DefaultColumns, store.Columns())

	tbl, err := store.Load()
	require.NoError(t, err)
	require.True(t, tbl.SetCell(0, 12, "Passed"))
	require.NoError(t, store.Save(tbl))

	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Passed", again.Cell(0, 12))
}
