// SPDX-FileCopyrightText: 2018 - 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"bytes"
	"strconv"
	"strings"

	x "github.com/linuxdeepin/go-x11-client"
	"golang.org/x/text/encoding/charmap"
)

// ResolveName 返回托盘窗口对应的程序名，按 WM_CLASS、wine 前缀、窗口 id 的顺序查找，结果不会为空。
func ResolveName(d Display, win x.Window) string {
	if d != nil {
		name := getStringProperty(d, win, propWMClass)
		if name != "" && name != wineWMClass {
			return name
		}

		prefix := getStringProperty(d, win, propWinePrefix)
		if idx := strings.LastIndex(prefix, "/"); idx >= 0 {
			prefix = prefix[idx+1:]
		}
		if prefix != "" {
			return prefix
		}
	}
	return strconv.FormatUint(uint64(win), 10)
}

func getStringProperty(d Display, win x.Window, name string) string {
	data, err := d.GetProperty(win, name)
	if err != nil {
		logger.Debugf("get %s of window %d failed: %v", name, win, err)
		return ""
	}
	return decodeLatin1(data)
}

// decodeLatin1 只取第一个 NUL 之前的内容，WM_CLASS 中第一个字符串是 instance 名。
func decodeLatin1(data []byte) string {
	if idx := bytes.IndexByte(data, 0); idx >= 0 {
		data = data[:idx]
	}
	result, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		logger.Warning(err)
		return string(data)
	}
	return string(result)
}

func ToXEmbedKey(win x.Window) string {
	return xembedKeyPrefix + strconv.FormatUint(uint64(win), 10)
}

func IsXEmbedKey(key string) bool {
	return strings.HasPrefix(key, xembedKeyPrefix)
}
