package ffmpeg

// Build constructs the ffmpeg argument slice (binary first) that re-encodes
// video with the given geometry, replaces its audio with audio, and stops at
// the end of the shorter stream.
func Build(bin, video, audio, output string, g Geometry) []string {
	args := make([]string, 0, 20)

	// --- Preamble ---
	args = append(args, bin, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	// --- Inputs: 0 = video, 1 = replacement audio ---
	args = append(args, "-i", video, "-i", audio)

	// --- Filter graph and maps ---
	args = append(args,
		"-filter_complex", g.VideoFilter(),
		"-map", "[v]",
		"-map", "1:a:0",
	)

	// --- Length: truncate to the shorter input ---
	args = append(args, "-shortest")

	// --- Output ---
	return append(args, output)
}
