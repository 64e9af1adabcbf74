package main

import (
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestShrinkPhotoDownscales(t *testing.T) {
	img := imaging.New(400, 300, color.NRGBA{A: 255})
	rng := rand.New(rand.NewSource(1))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "noise.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	before, _ := os.Stat(path)

	if err := shrinkPhoto(path, before.Size()/4); err != nil {
		t.Fatalf("shrinkPhoto: %v", err)
	}
	after, _ := os.Stat(path)
	if after.Size() >= before.Size() {
		t.Fatalf("photo not reduced: %d -> %d", before.Size(), after.Size())
	}
	got, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got.Bounds().Dx() >= 400 {
		t.Fatalf("width not reduced: %d", got.Bounds().Dx())
	}
}

func TestShrinkPhotoLeavesSmallFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.png")
	if err := imaging.Save(imaging.New(10, 10, color.White), path); err != nil {
		t.Fatalf("save: %v", err)
	}
	before, _ := os.Stat(path)
	if err := shrinkPhoto(path, shrinkAbove); err != nil {
		t.Fatalf("shrinkPhoto: %v", err)
	}
	after, _ := os.Stat(path)
	if !after.ModTime().Equal(before.ModTime()) || after.Size() != before.Size() {
		t.Fatalf("small photo was rewritten")
	}
}

func TestDiscardPhoto(t *testing.T) {
	cfg.UploadBase = t.TempDir()
	t.Cleanup(func() { cfg.UploadBase = "" })
	full := filepath.Join(cfg.UploadBase, "1-2.jpg")
	if err := os.WriteFile(full, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	discardPhoto("/uploads/1-2.jpg")
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Fatalf("photo still present: %v", err)
	}
	discardPhoto("/uploads/../../etc/passwd") // stays inside the upload dir
	discardPhoto("")
}

func TestIsSupportedExt(t *testing.T) {
	for ext, want := range map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".exe": false, ".heic": false} {
		if got := isSupportedExt(ext); got != want {
			t.Errorf("isSupportedExt(%q) = %v, want %v", ext, got, want)
		}
	}
}
