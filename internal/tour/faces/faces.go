// Package faces maps an arbitrary set of six uploaded images to the
// canonical cube-face ordering used by the panorama renderer.
package faces

import (
	"fmt"
	"regexp"
	"strings"
)

// Face identifies one side of the cubemap in canonical order.
type Face int

const (
	PosX Face = iota // +X, right
	NegX             // -X, left
	PosY             // +Y, top
	NegY             // -Y, bottom
	PosZ             // +Z, front
	NegZ             // -Z, back

	// Count is the number of cube faces.
	Count = 6
)

// Field returns the multipart field name for the face (textures[posx] etc.).
func (f Face) Field() string {
	return [Count]string{"posx", "negx", "posy", "negy", "posz", "negz"}[f]
}

// Label returns the human-readable face name used on placeholder textures.
func (f Face) Label() string {
	return [Count]string{"Right", "Left", "Top", "Bottom", "Front", "Back"}[f]
}

func (f Face) String() string { return f.Field() }

// Fields lists the multipart field names in canonical order.
func Fields() [Count]string {
	return [Count]string{"posx", "negx", "posy", "negy", "posz", "negz"}
}

// Input is one uploaded or stored image before face assignment.
type Input struct {
	// Name is the original filename, used for face-key detection. May be empty.
	Name string
	// Ref is an opaque reference to the image (URL, storage path, temp file).
	Ref string
}

// Face key tokens are matched as whole words: "px" in "px_kitchen.jpg" counts,
// "px" inside "sphinx.jpg" does not.
var facePatterns = [Count]*regexp.Regexp{
	PosX: regexp.MustCompile(`(^|[^a-z])(posx|px|right)([^a-z]|$)`),
	NegX: regexp.MustCompile(`(^|[^a-z])(negx|nx|left)([^a-z]|$)`),
	PosY: regexp.MustCompile(`(^|[^a-z])(posy|py|top)([^a-z]|$)`),
	NegY: regexp.MustCompile(`(^|[^a-z])(negy|ny|bottom|down)([^a-z]|$)`),
	PosZ: regexp.MustCompile(`(^|[^a-z])(posz|pz|front)([^a-z]|$)`),
	NegZ: regexp.MustCompile(`(^|[^a-z])(negz|nz|back)([^a-z]|$)`),
}

// KeyFromName reports the face a filename refers to, if any.
func KeyFromName(name string) (Face, bool) {
	n := strings.ToLower(name)
	for f, re := range facePatterns {
		if re.MatchString(n) {
			return Face(f), true
		}
	}
	return 0, false
}

// Resolve orders six inputs into the canonical [+X -X +Y -Y +Z -Z] tuple.
//
// Inputs whose filename carries a recognizable face key claim that slot.
// The rest fill the remaining empty slots in their original relative order.
// Resolution fails if two named inputs claim the same face or any slot ends
// up empty; a room with a failed resolution is not renderable.
func Resolve(inputs []Input) ([Count]Input, error) {
	var out [Count]Input
	if len(inputs) != Count {
		return out, fmt.Errorf("faces: want %d images, got %d", Count, len(inputs))
	}

	taken := [Count]bool{}
	var untyped []Input
	for _, in := range inputs {
		f, ok := KeyFromName(in.Name)
		if !ok {
			untyped = append(untyped, in)
			continue
		}
		if taken[f] {
			return out, fmt.Errorf("faces: duplicate %s image %q", f, in.Name)
		}
		out[f] = in
		taken[f] = true
	}

	// Positional fallback: untyped inputs fill empty slots in encounter order.
	i := 0
	for f := range out {
		if taken[f] {
			continue
		}
		if i >= len(untyped) {
			return out, fmt.Errorf("faces: no image for %s", Face(f))
		}
		out[f] = untyped[i]
		taken[f] = true
		i++
	}

	return out, nil
}
