package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fwtools/go-blboot/bootheader"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <image>",
		Short: "Validate the boot header of an image without modifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := bootheader.CheckFile(args[0])
			if err != nil {
				return err
			}

			if plan.Empty() {
				log.Info("image header is consistent")
				return nil
			}

			if plan.RefillSha256 {
				log.WithField("sha256", fmt.Sprintf("%x", plan.Sha256)).
					Warn("body hash is an unfilled sentinel and needs a refill")
			}
			if plan.RefillHeaderCRC {
				log.WithField("crc32", fmt.Sprintf("0x%08X", plan.HeaderCRC)).
					Warn("header CRC needs a refill")
			}
			log.Info("run 'blboot repair' to apply the fixes")
			return nil
		},
	}
}

func newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair <image>",
		Short: "Validate an image and repair its header in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			plan, err := bootheader.CheckFile(path)
			if err != nil {
				return err
			}

			if plan.Empty() {
				log.Info("image header is already consistent, nothing to repair")
				return nil
			}

			if err := bootheader.ProcessFile(path, plan); err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"hash_refilled": plan.RefillSha256,
				"crc_refilled":  plan.RefillHeaderCRC,
			}).Info("image header repaired")
			return nil
		},
	}
}
