package ingestion

import "strings"

// SplitText splits text into chunks of at most chunkSize characters with
// overlap characters shared between neighbours. The cut is pulled back to
// the last sentence boundary (". ", "? ", "! ") when that boundary falls in
// the second half of the chunk, so sentences are rarely torn in two.
// Whitespace is normalized first; text at or under chunkSize comes back as
// a single chunk, blank text as none.
func SplitText(text string, chunkSize, overlap int) []string {
	text = strings.Join(strings.Fields(text), " ")

	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}
	if overlap >= chunkSize {
		// a non-advancing window would never terminate
		overlap = chunkSize / 10
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + chunkSize
		sliceEnd := end
		if sliceEnd > len(text) {
			sliceEnd = len(text)
		}
		chunk := text[start:sliceEnd]

		if end < len(text) {
			if cut := lastSentenceBreak(chunk); cut > chunkSize/2 {
				chunk = text[start : start+cut+1]
				end = start + cut + 1
			}
		}

		chunks = append(chunks, strings.TrimSpace(chunk))

		// A sentence snap near the midpoint can leave end-overlap at or
		// behind start; the window must always move forward.
		if next := end - overlap; next > start {
			start = next
		} else {
			start = end
		}
	}

	return chunks
}

// lastSentenceBreak returns the index of the terminator of the last complete
// sentence in chunk, or -1 when there is none.
func lastSentenceBreak(chunk string) int {
	cut := strings.LastIndex(chunk, ". ")
	if i := strings.LastIndex(chunk, "? "); i > cut {
		cut = i
	}
	if i := strings.LastIndex(chunk, "! "); i > cut {
		cut = i
	}
	return cut
}
