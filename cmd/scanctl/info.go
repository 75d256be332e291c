package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scanout/scanout/kms"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: `print display pipeline objects`,
	Long:  `print connectors, encoders, crtcs and planes with their properties`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(infoFunc(cmd, args))
	},
}

func infoFunc(cmd *cobra.Command, args []string) func() error {
	return func() error {
		c, err := kms.Open(device)
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.SetClientCap(kms.ClientCapUniversalPlanes, 1); err != nil {
			return err
		}
		if v, err := c.GetCap(kms.CapDumbBuffer); err == nil {
			fmt.Printf("dumb buffers: %d\n", v)
		}
		if w, err := c.GetCap(kms.CapCursorWidth); err == nil {
			h, _ := c.GetCap(kms.CapCursorHeight)
			fmt.Printf("cursor plane: %dx%d\n", w, h)
		}
		res, err := c.Resources()
		if err != nil {
			return err
		}
		for _, id := range res.Connectors {
			conn, err := c.Connector(id)
			if err != nil {
				return err
			}
			fmt.Printf("connector %d: connection=%d encoder=%d modes=%d\n",
				conn.ID, conn.Connection, conn.EncoderID, len(conn.Modes))
			printProps(c, conn.ID, kms.ObjectConnector)
		}
		for _, id := range res.Encoders {
			enc, err := c.Encoder(id)
			if err != nil {
				return err
			}
			fmt.Printf("encoder %d: crtc=%d\n", enc.ID, enc.CRTCID)
		}
		for _, id := range res.CRTCs {
			crtc, err := c.CRTC(id)
			if err != nil {
				return err
			}
			fmt.Printf("crtc %d: fb=%d mode=%q\n", crtc.ID, crtc.FBID, crtc.Mode.Name())
			printProps(c, crtc.ID, kms.ObjectCRTC)
		}
		planes, err := c.PlaneResources()
		if err != nil {
			return err
		}
		for _, id := range planes {
			plane, err := c.Plane(id)
			if err != nil {
				return err
			}
			fmt.Printf("plane %d: crtc=%d fb=%d formats=%d\n",
				plane.ID, plane.CRTCID, plane.FBID, len(plane.Formats))
			printProps(c, plane.ID, kms.ObjectPlane)
		}
		return nil
	}
}

func printProps(c *kms.Device, objectID, objectType uint32) {
	props, err := c.ObjectProperties(objectID, objectType)
	if err != nil {
		fmt.Printf("  properties: %v\n", err)
		return
	}
	for _, p := range props {
		fmt.Printf("  %-24s id=%-4d value=%d\n", p.Name, p.ID, p.Value)
	}
}
