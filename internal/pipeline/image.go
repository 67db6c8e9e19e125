package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/alnah/go-docx2pdf/internal/docx"
)

// ImageFormat describes an embeddable image encoding.
type ImageFormat struct {
	Ext         string // media part extension, without dot
	ContentType string
}

// Supported image formats keyed by lower-case file extension.
var imageFormats = map[string]ImageFormat{
	".jpg":  {Ext: "jpeg", ContentType: "image/jpeg"},
	".jpeg": {Ext: "jpeg", ContentType: "image/jpeg"},
	".png":  {Ext: "png", ContentType: "image/png"},
	".gif":  {Ext: "gif", ContentType: "image/gif"},
	".bmp":  {Ext: "bmp", ContentType: "image/bmp"},
}

// Placeholder size of injected images: 2 in square.
const (
	emuPerInch     = 914400
	ImageSizeEMU   = 2 * emuPerInch
	anchorDistLR   = "114300"
	anchorZOrder   = "251658240"
	pictureDataURI = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// ImageFormatFor resolves the encoding of path from its extension.
func ImageFormatFor(path string) (ImageFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := imageFormats[ext]
	if !ok {
		if ext == "" {
			ext = "(none)"
		}
		return ImageFormat{}, fmt.Errorf("%w: %s", ErrUnsupportedImageFormat, ext)
	}
	return format, nil
}

// CheckImage validates that imagePath has a supported extension and exists
// as a regular file. Callers run it before opening the document so a bad
// image never touches the package.
func CheckImage(imagePath string) (ImageFormat, error) {
	format, err := ImageFormatFor(imagePath)
	if err != nil {
		return ImageFormat{}, err
	}

	info, err := os.Stat(imagePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ImageFormat{}, fmt.Errorf("%w: %s", ErrImageNotFound, imagePath)
		}
		return ImageFormat{}, fmt.Errorf("checking image %s: %w", imagePath, err)
	}
	if info.IsDir() {
		return ImageFormat{}, fmt.Errorf("%w: %s is a directory", ErrImageNotFound, imagePath)
	}
	return format, nil
}

// InjectImage replaces the content of the named bookmark with a floating
// picture of imagePath, centred on the page with text wrapping disabled.
//
// A missing bookmark (or end marker) is a no-op, or ErrBookmarkNotFound when
// strict is set. Returns whether the image was injected.
func InjectImage(doc MediaDocument, bookmark, imagePath string, strict bool) (bool, error) {
	format, err := CheckImage(imagePath)
	if err != nil {
		return false, err
	}

	start, end := docx.FindBookmark(doc.Body(), bookmark)
	if start == nil || end == nil {
		if strict {
			return false, fmt.Errorf("%w: %q", ErrBookmarkNotFound, bookmark)
		}
		return false, nil
	}

	f, err := os.Open(imagePath) // #nosec G304 -- path validated by the caller
	if err != nil {
		return false, fmt.Errorf("opening image %s: %w", imagePath, err)
	}
	defer f.Close()

	docx.RemoveBetween(start, end)

	relID, err := doc.AddImage(format.Ext, format.ContentType, f)
	if err != nil {
		return false, fmt.Errorf("embedding image %s: %w", imagePath, err)
	}

	doc.EnsureNamespace("r", docx.NamespaceR)
	doc.EnsureNamespace("wp", docx.NamespaceWP)

	run := etree.NewElement("w:r")
	run.AddChild(newAnchorDrawing(relID, doc.NextDrawingID(), filepath.Base(imagePath)))

	insertRunAfter(start, run)
	return true, nil
}

// newAnchorDrawing builds w:drawing/wp:anchor for the embedded relationship.
func newAnchorDrawing(relID string, drawingID int, name string) *etree.Element {
	size := strconv.Itoa(ImageSizeEMU)
	id := strconv.Itoa(drawingID)

	drawing := etree.NewElement("w:drawing")
	anchor := drawing.CreateElement("wp:anchor")
	for _, kv := range [][2]string{
		{"distT", "0"}, {"distB", "0"},
		{"distL", anchorDistLR}, {"distR", anchorDistLR},
		{"simplePos", "0"}, {"relativeHeight", anchorZOrder},
		{"behindDoc", "0"}, {"locked", "0"},
		{"layoutInCell", "1"}, {"allowOverlap", "1"},
	} {
		anchor.CreateAttr(kv[0], kv[1])
	}

	pos := anchor.CreateElement("wp:simplePos")
	pos.CreateAttr("x", "0")
	pos.CreateAttr("y", "0")

	for _, axis := range []string{"wp:positionH", "wp:positionV"} {
		p := anchor.CreateElement(axis)
		p.CreateAttr("relativeFrom", "margin")
		p.CreateElement("wp:align").SetText("center")
	}

	extent := anchor.CreateElement("wp:extent")
	extent.CreateAttr("cx", size)
	extent.CreateAttr("cy", size)

	effect := anchor.CreateElement("wp:effectExtent")
	for _, k := range []string{"l", "t", "r", "b"} {
		effect.CreateAttr(k, "0")
	}

	anchor.CreateElement("wp:wrapNone")

	docPr := anchor.CreateElement("wp:docPr")
	docPr.CreateAttr("id", id)
	docPr.CreateAttr("name", "Picture "+id)

	locks := anchor.CreateElement("wp:cNvGraphicFramePr").CreateElement("a:graphicFrameLocks")
	locks.CreateAttr("xmlns:a", docx.NamespaceA)
	locks.CreateAttr("noChangeAspect", "1")

	graphic := anchor.CreateElement("a:graphic")
	graphic.CreateAttr("xmlns:a", docx.NamespaceA)
	data := graphic.CreateElement("a:graphicData")
	data.CreateAttr("uri", pictureDataURI)

	pic := data.CreateElement("pic:pic")
	pic.CreateAttr("xmlns:pic", docx.NamespacePic)

	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", "0")
	cNvPr.CreateAttr("name", name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", relID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	xfrm := pic.CreateElement("pic:spPr").CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", size)
	ext.CreateAttr("cy", size)

	geom := xfrm.Parent().CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")

	return drawing
}
