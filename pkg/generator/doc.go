// Package generator synthesizes simulated profile records.
//
// Identity fields come from the identifier itself: the username is the
// slug after "/in/" and the display name is derived from it. Everything
// else (title, company, location, skills, counts) is filler drawn from
// fixed pools using the injected random source, so a fixed seed and clock
// give identical records. Every record is tagged data_type "simulated".
package generator
