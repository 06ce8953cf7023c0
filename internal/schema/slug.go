package schema

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 由标题生成 URL slug：音译成 ASCII、小写、
// 非字母数字折叠成连字符。唯一性计数由存储层追加。
func Slugify(title string) string {
	s := unidecode.Unidecode(title)
	s = strings.ToLower(s)
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "item"
	}
	return s
}
