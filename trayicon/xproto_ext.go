// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"encoding/binary"

	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/ext/damage"
)

// go-x11-client 没有 SHAPE 扩展，也没有实现 DamageSubtract，这里按 shape.xml、damage.xml 编码。

const shapeRectanglesOpcode = 1

var shapeExt *x.Extension

func init() {
	shapeExt = x.NewExtension("SHAPE", 0, nil, map[uint]string{
		shapeRectanglesOpcode: "Rectangles",
	})
}

func encodeShapeRectangles(op, kind, ordering uint8, win x.Window,
	xOffset, yOffset int16, rects []x.Rectangle) (b x.RequestBody) {
	b0 := b.AddBlock(3 + 2*len(rects)).
		Write1b(op).
		Write1b(kind).
		Write1b(ordering).
		WritePad(1).
		Write4b(uint32(win)).
		Write2b(uint16(xOffset)).
		Write2b(uint16(yOffset))
	for _, rect := range rects {
		x.WriteRectangle(b0, rect)
	}
	b0.End()
	return
}

func shapeRectangles(conn *x.Conn, op, kind, ordering uint8, win x.Window,
	xOffset, yOffset int16, rects []x.Rectangle) {
	req := &x.ProtocolRequest{
		Ext:     shapeExt,
		NoReply: true,
		Header: x.RequestHeader{
			Data: shapeRectanglesOpcode,
		},
		Body: encodeShapeRectangles(op, kind, ordering, win, xOffset, yOffset, rects),
	}
	conn.SendRequest(0, req)
}

// repair 与 parts 为 0 时清空整个 damage 区域
func encodeDamageSubtract(d damage.Damage, repair, parts uint32) (b x.RequestBody) {
	b.AddBlock(3).
		Write4b(uint32(d)).
		Write4b(repair).
		Write4b(parts).
		End()
	return
}

func damageSubtract(conn *x.Conn, d damage.Damage, repair, parts uint32) {
	req := &x.ProtocolRequest{
		Ext:     damage.Ext(),
		NoReply: true,
		Header: x.RequestHeader{
			Data: damage.SubtractOpcode,
		},
		Body: encodeDamageSubtract(d, repair, parts),
	}
	conn.SendRequest(0, req)
}

func encodeExposeEvent(win x.Window, width, height uint16) []byte {
	ev := make([]byte, 32)
	ev[0] = x.ExposeEventCode
	binary.LittleEndian.PutUint32(ev[4:], uint32(win))
	binary.LittleEndian.PutUint16(ev[12:], width)
	binary.LittleEndian.PutUint16(ev[14:], height)
	return ev
}

// MANAGER 广播，格式见 freedesktop system tray 规范
func encodeManagerEvent(root x.Window, managerAtom, selection x.Atom, owner x.Window) []byte {
	ev := make([]byte, 32)
	ev[0] = x.ClientMessageEventCode
	ev[1] = 32
	binary.LittleEndian.PutUint32(ev[4:], uint32(root))
	binary.LittleEndian.PutUint32(ev[8:], uint32(managerAtom))
	binary.LittleEndian.PutUint32(ev[12:], uint32(x.CurrentTime))
	binary.LittleEndian.PutUint32(ev[16:], uint32(selection))
	binary.LittleEndian.PutUint32(ev[20:], uint32(owner))
	return ev
}
