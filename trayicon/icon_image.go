// SPDX-FileCopyrightText: 2018 - 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/xerrors"
)

// IconImage 是缩放到图标大小后的托盘窗口截图。
type IconImage struct {
	Image            *image.NRGBA
	DevicePixelRatio float64
}

// Image 返回最近一次截图，可以在任意 goroutine 中调用。
func (icon *TrayIcon) Image() *IconImage {
	return icon.image.Load()
}

// UpdateIcon 请求刷新图标，100ms 内的多次请求只会截图一次。
func (icon *TrayIcon) UpdateIcon() {
	if !icon.valid || icon.state.has(stateDestroyed) {
		return
	}
	icon.state = icon.state.next(eventRefreshRequested)
	icon.refreshTimer.Reset()
}

func (icon *TrayIcon) refreshIconImage() {
	if icon.state.has(stateDestroyed) {
		return
	}
	icon.state = icon.state.next(eventRefreshFired)
	if !icon.valid {
		return
	}

	d := icon.env.display()
	geo, err := d.GetGeometry(icon.win)
	if err != nil {
		logger.Debug(err)
		return
	}

	size := icon.pixelSize()
	err = d.SendExpose(icon.container, size, size)
	if err != nil {
		logger.Warning(err)
	}
	err = d.Flush()
	if err != nil {
		logger.Warning(err)
	}

	raw, err := d.GetImage(icon.win, geo.Width, geo.Height)
	if err != nil {
		logger.Warningf("capture window %d failed: %v", icon.win, err)
		return
	}
	img, err := convertImage(raw)
	if err != nil {
		logger.Warningf("convert image of window %d failed: %v", icon.win, err)
		return
	}

	icon.image.Store(&IconImage{
		Image:            scaleImage(img, int(size)),
		DevicePixelRatio: icon.env.devicePixelRatio(),
	})

	if icon.widget != nil {
		icon.widget.Update()
	}
	host := icon.env.host
	if host == nil {
		return
	}
	host.OnIconChanged(icon)
	if icon.notify && icon.widget != nil && !icon.widget.IsVisible() {
		host.OnNeedsAttention(icon)
	}
}

// convertImage 把 ZPixmap 的 BGRA 数据复制为 NRGBA，24 位深度的窗口没有 alpha 通道。
func convertImage(raw *RawImage) (*image.NRGBA, error) {
	if raw == nil || raw.Width == 0 || raw.Height == 0 || len(raw.Data) == 0 {
		return nil, xerrors.Errorf("empty image: %w", ErrCaptureFailed)
	}
	width, height := int(raw.Width), int(raw.Height)
	stride := width * 4
	if len(raw.Data) < stride*height {
		return nil, xerrors.Errorf("image data too short, want %d got %d: %w",
			stride*height, len(raw.Data), ErrCaptureFailed)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	opaque := raw.Depth != 32
	for y := 0; y < height; y++ {
		src := raw.Data[y*stride : (y+1)*stride]
		dst := img.Pix[y*img.Stride : y*img.Stride+stride]
		for i := 0; i < stride; i += 4 {
			dst[i] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i]
			if opaque {
				dst[i+3] = 0xff
			} else {
				dst[i+3] = src[i+3]
			}
		}
	}
	return img, nil
}

// scaleImage 保持宽高比缩放到 box*box 以内。
func scaleImage(src *image.NRGBA, box int) *image.NRGBA {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dstWidth, dstHeight := box, box
	if width > height {
		dstHeight = scaleSide(height, box, width)
	} else if height > width {
		dstWidth = scaleSide(width, box, height)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	return dst
}

func scaleSide(side, box, longSide int) int {
	v := int(math.Round(float64(side) * float64(box) / float64(longSide)))
	if v < 1 {
		return 1
	}
	return v
}

// Paint 把图标画在 dst 中间，还没有截图时请求刷新并返回 false。
func (icon *TrayIcon) Paint(dst xdraw.Image) bool {
	img := icon.Image()
	if img == nil {
		icon.UpdateIcon()
		return false
	}
	bounds := dst.Bounds()
	size := img.Image.Bounds().Size()
	offset := image.Pt(
		bounds.Min.X+(bounds.Dx()-size.X)/2,
		bounds.Min.Y+(bounds.Dy()-size.Y)/2,
	)
	xdraw.Draw(dst, image.Rectangle{Min: offset, Max: offset.Add(size)},
		img.Image, image.Point{}, xdraw.Over)
	return true
}
