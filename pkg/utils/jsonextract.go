package utils

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONObject 表示文本中找不到可解析的 JSON 对象。
var ErrNoJSONObject = errors.New("no json object found")

// ExtractJSONObject 从模型输出中提取第一个 JSON 对象。
// 先整体严格解析，失败后按花括号配对逐段扫描（忽略字符串内的括号）。
func ExtractJSONObject(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(stripCodeFence(text))
	if trimmed == "" {
		return nil, ErrNoJSONObject
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil && obj != nil {
		return obj, nil
	}

	for offset := 0; offset < len(trimmed); {
		candidate := balancedObject(trimmed[offset:])
		if candidate == "" {
			break
		}
		obj = nil
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil && obj != nil {
			return obj, nil
		}
		// 跳过本段起始的 '{'，继续寻找后续对象
		offset += strings.IndexByte(trimmed[offset:], '{') + 1
	}
	return nil, ErrNoJSONObject
}

// balancedObject 返回 s 中第一个括号配对完整的 {...} 片段。
func balancedObject(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range s {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' && start != -1 {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return text
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl != -1 {
		t = t[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(t), "```")
}
