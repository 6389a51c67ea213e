package token

import "strings"

var builtinTypes = map[string]bool{
	"void":        true,
	"bool":        true,
	"int":         true,
	"uint":        true,
	"float":       true,
	"double":      true,
	"atomic_uint": true,
}

// Prefixes of the opaque types. Any identifier with one of these prefixes
// followed by an upper case letter or digit is a built-in type, for example
// sampler2DShadow or uimageCubeArray.
var opaquePrefixes = []string{
	"sampler", "isampler", "usampler",
	"image", "iimage", "uimage",
	"texture", "itexture", "utexture",
	"subpassInput", "isubpassInput", "usubpassInput",
}

func init() {
	for _, prefix := range []string{"", "b", "i", "u", "d"} {
		for n := '2'; n <= '4'; n++ {
			builtinTypes[prefix+"vec"+string(n)] = true
		}
	}
	for _, prefix := range []string{"", "d"} {
		for n := '2'; n <= '4'; n++ {
			builtinTypes[prefix+"mat"+string(n)] = true
			for m := '2'; m <= '4'; m++ {
				builtinTypes[prefix+"mat"+string(n)+"x"+string(m)] = true
			}
		}
	}
}

// IsBuiltinType reports whether name is a built-in type of the language.
func IsBuiltinType(name string) bool {
	if builtinTypes[name] {
		return true
	}
	for _, prefix := range opaquePrefixes {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || rest == "" {
			continue
		}
		if c := rest[0]; (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return true
		}
	}
	return name == "sampler" || name == "samplerShadow"
}
