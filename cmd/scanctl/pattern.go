package main

import (
	"fmt"
	"image/color"
	"time"

	"github.com/spf13/cobra"

	"github.com/scanout/scanout"
	"github.com/scanout/scanout/render/soft"
)

var (
	patternFrames int
	patternDelay  time.Duration
)

func init() {
	patternCmd.Flags().IntVarP(&patternFrames, `frames`, `n`, 120, `frames to present`)
	patternCmd.Flags().DurationVar(&patternDelay, `delay`, 16*time.Millisecond, `delay between frames`)
	rootCmd.AddCommand(patternCmd)
}

var patternCmd = &cobra.Command{
	Use:   "pattern",
	Short: `present a moving test gradient`,
	Long:  `present a moving test gradient through the CPU renderer`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(patternFunc(cmd, args))
	},
}

func patternFunc(cmd *cobra.Command, args []string) func() error {
	return func() error {
		renderer := soft.New()
		d, err := scanout.Acquire(device, scanout.WithRenderer(renderer))
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

		mode := d.Mode()
		fmt.Printf("presenting %d frames at %s\n", patternFrames, mode.Name())
		for frame := 0; frame < patternFrames; frame++ {
			canvas, err := renderer.Canvas(surf)
			if err != nil {
				return err
			}
			bounds := canvas.Bounds()
			for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					canvas.Set(x, y, color.RGBA{
						R: uint8((x + frame) * 255 / bounds.Max.X),
						G: uint8(y * 255 / bounds.Max.Y),
						B: uint8(frame * 2),
						A: 0xff,
					})
				}
			}
			if err := d.Present(surf); err != nil {
				return err
			}
			time.Sleep(patternDelay)
		}
		return nil
	}
}
