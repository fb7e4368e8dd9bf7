package rig

// validate is spec §4.3's Validator: the single authority on whether
// cmd is supported by this model, consulted before any transaction
// runs. Backends must not bypass it — every AsciiRig operation calls
// this before building a wire string.
func (r *AsciiRig) validate(op, cmd string) error {
	if r.caps.Supports(cmd) {
		return nil
	}
	return newErr(op, KindUnavailable, r.caps.ModelName, cmd, nil)
}
