// Package words supplies candidate words for board generation.
//
// A default list is embedded in the binary. WORDWEEPER_WORDS_FILE, or a
// preset's word_list, points at a replacement file with one word per line.
// Words are normalised to uppercase A-Z on load; everything else is skipped.
package words
