// Package hardcopy captures an instrument screen dump through an AR488 bridge.
//
// The instrument is told to render a BMP to the GPIB port; the bridge then
// relays the raw image bytes:
//
//	opts := append(hardcopy.BridgeOptions(), bridge.WithGPIBAddress(1))
//	s, err := bridge.Open("/dev/ttyUSB0", opts...)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	if err := s.Init(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := hardcopy.CaptureToFile(ctx, s, "screen.bmp"); err != nil {
//	    log.Fatal(err)
//	}
package hardcopy
