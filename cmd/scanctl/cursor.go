package main

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/scanout/scanout"
	"github.com/scanout/scanout/render/soft"
)

var (
	cursorSeconds int
	cursorPremult bool
)

func init() {
	cursorCmd.Flags().IntVar(&cursorSeconds, `seconds`, 5, `how long to move the cursor`)
	cursorCmd.Flags().BoolVar(&cursorPremult, `premultiply`, false, `use the premultiplied upload`)
	rootCmd.AddCommand(cursorCmd)
}

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: `move a hardware cursor around`,
	Long:  `show a hardware cursor and move it along a circle`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(cursorFunc(cmd, args))
	},
}

func cursorFunc(cmd *cobra.Command, args []string) func() error {
	return func() error {
		renderer := soft.New()
		d, err := scanout.Acquire(device,
			scanout.WithRenderer(renderer),
			scanout.WithPremultipliedCursor(cursorPremult),
		)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.InitBackend(); err != nil {
			return err
		}
		cfg, err := d.ChooseSurfaceConfig([8]int32{8, 8, 8, 8, 0, 0, 1, 0})
		if err != nil {
			return err
		}
		surf, err := d.CreateWindowSurface(cfg, nil)
		if err != nil {
			return err
		}
		ctx, err := d.CreateRenderContext(cfg)
		if err != nil {
			return err
		}
		if err := d.MakeCurrent(surf, surf, ctx); err != nil {
			return err
		}
		if err := d.Present(surf); err != nil {
			return err
		}

		cw, ch := d.CursorSize()
		d.CursorInit(cw, ch)
		d.CursorSetImage(scanout.CursorImageRGBA(cursorDot(int(cw)), int(cw), int(ch)))
		d.CursorSetVisible(true)

		mode := d.Mode()
		cx, cy := int(mode.HDisplay)/2, int(mode.VDisplay)/2
		r := float64(min(cx, cy)) / 2
		deadline := time.Now().Add(time.Duration(cursorSeconds) * time.Second)
		for t := 0.0; time.Now().Before(deadline); t += 0.05 {
			d.CursorSetLocation(cx+int(r*math.Cos(t)), cy+int(r*math.Sin(t)))
			time.Sleep(16 * time.Millisecond)
		}
		d.CursorSetVisible(false)
		return nil
	}
}

// cursorDot draws a filled circle with a transparent background.
func cursorDot(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			if dx*dx+dy*dy <= (c-1)*(c-1) {
				img.SetRGBA(x, y, color.RGBA{R: 0xff, G: 0x66, A: 0xff})
			}
		}
	}
	return img
}
