package files

import (
	"bytes"
	"html/template"
	"net/url"
	"path"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/otg-serve/otg-serve/internal/format"
)

// Entry 是目录列表中的一行。Size 仅对普通文件填充。
type Entry struct {
	Name  string
	Size  string
	IsDir bool
}

// List 返回目录内容：先是 "." 与 ".."，随后是按名称排序的子目录，
// 最后是按名称排序并带可读大小的普通文件。其它类型（符号链接等）被忽略。
func List(fs afero.Fs, dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read dir %s", dir)
	}

	var dirs, regular []Entry
	for _, info := range infos {
		switch {
		case info.IsDir():
			dirs = append(dirs, Entry{Name: info.Name(), IsDir: true})
		case info.Mode().IsRegular():
			regular = append(regular, Entry{Name: info.Name(), Size: format.Size(info.Size())})
		}
	}

	sortEntries(dirs)
	sortEntries(regular)

	entries := make([]Entry, 0, len(dirs)+len(regular)+2)
	entries = append(entries, Entry{Name: ".", IsDir: true}, Entry{Name: "..", IsDir: true})
	entries = append(entries, dirs...)
	entries = append(entries, regular...)
	return entries, nil
}

// sortEntries 使用 Unicode 排序规则，collator 非并发安全，因此每次新建。
func sortEntries(entries []Entry) {
	c := collate.New(language.Und)
	sort.SliceStable(entries, func(i, j int) bool {
		return c.CompareString(entries[i].Name, entries[j].Name) < 0
	})
}

// listingHref 拼接链接并对路径做 URL 转义，文件名中的 '#'、'?' 不会被当成片段或查询。
func listingHref(base, name string) string {
	u := url.URL{Path: path.Join(base, name)}
	return u.EscapedPath()
}

var listingTemplate = template.Must(template.New("listing").Funcs(template.FuncMap{
	"link": listingHref,
}).Parse(`<!DOCTYPE html>
<html>
	<head>
		<meta charset="UTF-8" />
		<title>{{.Path}}</title>
	</head>
	<body>
		<h1>Directory Listing</h1>
		<p>{{.Path}}</p>
		<ul>
			{{- range .Entries}}
			<li><a href="{{link $.Path .Name}}">{{.Name}}</a>{{if .Size}} ({{.Size}}){{end}}</li>
			{{- end}}
		</ul>
	</body>
</html>
`))

// RenderListing 渲染目录列表页，链接为 urlPath 与条目名拼接后的规范路径。
func RenderListing(urlPath string, entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Path    string
		Entries []Entry
	}{Path: urlPath, Entries: entries}
	if err := listingTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "render listing")
	}
	return buf.Bytes(), nil
}
