package config

// This file hosts non-user-configurable parameters, for development and tuning purposes only
// (mirrors the teacher's config/const.go convention of documented untyped constants that are
// never exposed through Options).

// StubbornClosureRoundLimit bounds the number of fixed-point iterations the stubborn-set
// closure (preset_of/postset_of/post_preset_of) performs before it is considered stable. The
// closure is monotone (it only ever adds transitions to S), so in practice it always terminates
// well before this limit; the limit exists purely as a defensive backstop against a
// programming error turning the closure into an infinite loop.
const StubbornClosureRoundLimit = 10000

// DefaultEncoderScratchCapacity is the initial capacity reserved for the marking encoder's
// scratch buffer, sized to avoid reallocation for typical small nets while still growing
// gracefully for larger ones.
const DefaultEncoderScratchCapacity = 64

// MaxKeyBits is the bit-length budget of the state store's trie length field (spec.md §4.2):
// "The encoder must reject keys whose bit-length exceeds the trie's 16-bit length field with a
// defined error, not silent truncation."
const MaxKeyBits = 1 << 16
