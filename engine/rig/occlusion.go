package rig

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/go-gl/mathgl/mgl32"
)

// OcclusionMargin is how far along the surface normal a pushed camera sits from the hit point.
const OcclusionMargin float32 = 0.2

// OcclusionResolver tests the line of sight between the target's follow point and the camera.
// A nil resolver or a resolver without a raycaster never reports occlusion.
type OcclusionResolver struct {
	caster Raycaster
	mask   common.Layer
}

// NewOcclusionResolver creates a resolver over the given raycaster.
//
// Parameters:
//   - caster: the scene's line query provider, may be nil
//   - mask: layers that block the view
//
// Returns:
//   - *OcclusionResolver: the newly created resolver
func NewOcclusionResolver(caster Raycaster, mask common.Layer) *OcclusionResolver {
	return &OcclusionResolver{caster: caster, mask: mask}
}

// SetMask replaces the blocking layer mask.
func (o *OcclusionResolver) SetMask(mask common.Layer) {
	o.mask = mask
}

// Blocker returns the closest hit between follow and camera that blocks the view.
// Triggers, layers outside the mask and surfaces owned by the target are ignored.
//
// Parameters:
//   - t: the followed target, may be nil
//   - follow: the point the camera looks at
//   - camera: the camera position
//
// Returns:
//   - common.RayHit: the closest blocking hit
//   - bool: true if a blocking hit exists
func (o *OcclusionResolver) Blocker(t Target, follow, camera mgl32.Vec3) (common.RayHit, bool) {
	if o == nil || o.caster == nil {
		return common.RayHit{}, false
	}
	var best common.RayHit
	found := false
	for _, h := range o.caster.Linecast(follow, camera, o.mask) {
		if h.Trigger || h.Layer&o.mask == 0 {
			continue
		}
		if t != nil && h.Owner != 0 && t.Owns(h.Owner) {
			continue
		}
		if !found || h.Distance < best.Distance {
			best = h
			found = true
		}
	}
	return best, found
}

// TestOcclusion reports whether the view from camera to follow is blocked.
func (o *OcclusionResolver) TestOcclusion(t Target, follow, camera mgl32.Vec3) bool {
	_, hit := o.Blocker(t, follow, camera)
	return hit
}

// ResolveOcclusion pulls the camera in front of the closest blocker.
//
// Parameters:
//   - t: the followed target, may be nil
//   - follow: the point the camera looks at
//   - camera: the desired camera position
//
// Returns:
//   - mgl32.Vec3: hit point plus OcclusionMargin along the normal, or camera when unblocked
//   - bool: true if the camera was moved
func (o *OcclusionResolver) ResolveOcclusion(t Target, follow, camera mgl32.Vec3) (mgl32.Vec3, bool) {
	h, hit := o.Blocker(t, follow, camera)
	if !hit {
		return camera, false
	}
	return h.Point.Add(h.Normal.Mul(OcclusionMargin)), true
}
