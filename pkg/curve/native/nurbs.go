package native

import (
	"fmt"
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/linea/pkg/geom"
)

// Knot surgery works on flattened homogeneous arrays. For periodic
// curves the flat pole list is the cyclic list prefixed by its last
// degree poles; edits fold the result back to one period, overriding
// the wrapped copies the edit touched.

type hpole struct{ x, y, w float64 }

func toH(p v3.Vec, w float64) hpole { return hpole{p.X * w, p.Y * w, w} }

func fromH(h hpole) (v3.Vec, float64) {
	return v3.Vec{X: h.x / h.w, Y: h.y / h.w}, h.w
}

func hpolesOf(b *geom.BSplineCurve) []hpole {
	n := len(b.Poles)
	var pw []hpole
	if b.Periodic {
		pw = make([]hpole, 0, n+b.Degree)
		for i := n - b.Degree; i < n; i++ {
			pw = append(pw, toH(b.Poles[i], b.Weights[i]))
		}
	} else {
		pw = make([]hpole, 0, n)
	}
	for i := 0; i < n; i++ {
		pw = append(pw, toH(b.Poles[i], b.Weights[i]))
	}
	return pw
}

func setPoles(b *geom.BSplineCurve, pw []hpole) {
	b.Poles = make([]v3.Vec, len(pw))
	b.Weights = make([]float64, len(pw))
	for i, h := range pw {
		b.Poles[i], b.Weights[i] = fromH(h)
	}
}

func flatSpan(flat []float64, degree, npoles int, u float64) int {
	lo, hi := degree, npoles-1
	if u >= flat[hi+1] {
		return hi
	}
	if u <= flat[lo] {
		return lo
	}
	for lo <= hi {
		mid := (lo + hi) / 2
		if u < flat[mid] {
			hi = mid - 1
		} else if u >= flat[mid+1] {
			lo = mid + 1
		} else {
			return mid
		}
	}
	return lo
}

// ---------------------------------------------------------------------------
// library surface

func (l *Lib) PoleCount(b *geom.BSplineCurve) int { return b.CountPoles() }
func (l *Lib) KnotCount(b *geom.BSplineCurve) int { return b.CountKnots() }

func (l *Lib) Multiplicities(b *geom.BSplineCurve) []int {
	return append([]int(nil), b.Mults...)
}

// InsertKnot raises the multiplicity of param by mult, inserting the
// knot if it is new. The resulting multiplicity may not exceed the
// degree.
func (l *Lib) InsertKnot(b *geom.BSplineCurve, param float64, mult int) error {
	if mult < 1 {
		return fmt.Errorf("insert knot: multiplicity increment %d < 1", mult)
	}
	cur := 0
	if i := b.KnotIndexAt(param, l.Tol); i >= 0 {
		cur = b.Mults[i]
		param = b.Knots[i]
	}
	if cur+mult > b.Degree {
		return fmt.Errorf("insert knot: resulting multiplicity %d exceeds degree %d", cur+mult, b.Degree)
	}
	return l.insertRaw(b, param, mult)
}

// insertRaw performs the insertions without the degree cap. Subdivision
// needs transient multiplicity degree+1.
func (l *Lib) insertRaw(b *geom.BSplineCurve, param float64, mult int) error {
	if !b.Periodic {
		first, last := b.FirstParameter(), b.LastParameter()
		if param < first-l.Tol || param > last+l.Tol {
			return fmt.Errorf("insert knot: parameter %g outside [%g, %g]", param, first, last)
		}
	}
	for i := 0; i < mult; i++ {
		if b.Periodic {
			l.insertOncePeriodic(b, param)
		} else {
			l.insertOnce(b, param)
		}
	}
	return nil
}

func (l *Lib) insertOnce(b *geom.BSplineCurve, u float64) {
	flat := b.FlatKnots()
	pw := hpolesOf(b)
	newFlat, np := boehm(flat, pw, b.Degree, u)
	setPoles(b, np)
	b.Knots, b.Mults = distinctKnots(newFlat, l.Tol)
}

func (l *Lib) insertOncePeriodic(b *geom.BSplineCurve, u float64) {
	n, d := len(b.Poles), b.Degree
	first, last := b.Knots[0], b.Knots[len(b.Knots)-1]
	period := last - first
	for u < first {
		u += period
	}
	for u >= last {
		u -= period
	}

	flat := b.FlatKnots()
	pw := hpolesOf(b)
	span := flatSpan(flat, d, n+d, u)
	_, np := boehm(flat, pw, d, u)

	// Fold back to one period. Modified wrapped head copies override
	// their stale tail counterparts.
	res := make([]hpole, n+1)
	copy(res, np[d:d+n+1])
	for i := span - d + 1; i <= span && i < d; i++ {
		res[i-d+n+1] = np[i]
	}
	setPoles(b, res)

	if i := b.KnotIndexAt(u, l.Tol); i >= 0 {
		b.Mults[i]++
		if i == 0 {
			b.Mults[len(b.Mults)-1]++
		}
	} else {
		at := sort.SearchFloat64s(b.Knots, u)
		b.Knots = append(b.Knots[:at:at], append([]float64{u}, b.Knots[at:]...)...)
		b.Mults = append(b.Mults[:at:at], append([]int{1}, b.Mults[at:]...)...)
	}
}

// boehm inserts u once into the flat representation.
func boehm(flat []float64, pw []hpole, degree int, u float64) ([]float64, []hpole) {
	span := flatSpan(flat, degree, len(pw), u)
	np := make([]hpole, len(pw)+1)
	copy(np[:span-degree+1], pw[:span-degree+1])
	for i := span - degree + 1; i <= span; i++ {
		alpha := (u - flat[i]) / (flat[i+degree] - flat[i])
		np[i] = hpole{
			x: alpha*pw[i].x + (1-alpha)*pw[i-1].x,
			y: alpha*pw[i].y + (1-alpha)*pw[i-1].y,
			w: alpha*pw[i].w + (1-alpha)*pw[i-1].w,
		}
	}
	copy(np[span+1:], pw[span:])

	nf := make([]float64, 0, len(flat)+1)
	nf = append(nf, flat[:span+1]...)
	nf = append(nf, u)
	nf = append(nf, flat[span+1:]...)
	return nf, np
}

func distinctKnots(flat []float64, tol float64) ([]float64, []int) {
	var knots []float64
	var mults []int
	for _, k := range flat {
		if len(knots) > 0 && math.Abs(k-knots[len(knots)-1]) <= tol {
			mults[len(mults)-1]++
			continue
		}
		knots = append(knots, k)
		mults = append(mults, 1)
	}
	return knots, mults
}

// RemoveKnot lowers the multiplicity of the distinct knot at knotIndex
// (0-based) by one, removing the knot when it reaches zero. The removal
// is forced: shape preservation is best effort, as when undoing an
// insertion.
func (l *Lib) RemoveKnot(b *geom.BSplineCurve, knotIndex int) error {
	if b.Periodic {
		return l.removeKnotPeriodic(b, knotIndex)
	}
	if knotIndex <= 0 || knotIndex >= len(b.Knots)-1 {
		return fmt.Errorf("remove knot: index %d is not an interior knot", knotIndex)
	}
	flat := b.FlatKnots()
	pw := hpolesOf(b)
	r := -1 // last flat occurrence
	for i := 0; i <= knotIndex; i++ {
		r += b.Mults[i]
	}
	newFlat, np := removeKnotOnce(flat, pw, b.Degree, r, b.Mults[knotIndex])
	setPoles(b, np)
	b.Knots, b.Mults = distinctKnots(newFlat, l.Tol)
	return nil
}

func (l *Lib) removeKnotPeriodic(b *geom.BSplineCurve, knotIndex int) error {
	m := len(b.Knots)
	if knotIndex < 0 || knotIndex >= m {
		return fmt.Errorf("remove knot: index %d out of range", knotIndex)
	}
	origin := b.Knots[0]
	// Rotate the seam so the target is the last knot block before the
	// wrap; the removal window then stays inside one period.
	cyc := knotIndex % (m - 1)
	rotateSeam(b, (cyc+1)%(m-1))

	n, d := len(b.Poles), b.Degree
	flat := b.FlatKnots()
	pw := hpolesOf(b)
	target := len(b.Knots) - 2
	r := d - 1
	for i := 0; i <= target; i++ {
		r += b.Mults[i]
	}
	s := b.Mults[target]
	_, np := removeKnotOnce(flat, pw, d, r, s)

	res := make([]hpole, n-1)
	copy(res, np[d:d+n-1])
	setPoles(b, res)
	b.Mults[target]--
	if b.Mults[target] == 0 {
		b.Knots = append(b.Knots[:target:target], b.Knots[target+1:]...)
		b.Mults = append(b.Mults[:target:target], b.Mults[target+1:]...)
	}
	seamTo(b, origin)
	return nil
}

// removeKnotOnce is the forced single knot removal on flat arrays; r is
// the last flat index of the knot, s its multiplicity.
func removeKnotOnce(flat []float64, pw []hpole, p, r, s int) ([]float64, []hpole) {
	u := flat[r]
	ord := p + 1
	first := r - p
	last := r - s
	off := first - 1

	temp := make([]hpole, last-off+2)
	temp[0] = pw[off]
	temp[last+1-off] = pw[last+1]
	i, j := first, last
	ii, jj := 1, last-off
	for j-i > 0 {
		alfi := (u - flat[i]) / (flat[i+ord] - flat[i])
		alfj := (u - flat[j]) / (flat[j+ord] - flat[j])
		temp[ii] = hpole{
			x: (pw[i].x - (1-alfi)*temp[ii-1].x) / alfi,
			y: (pw[i].y - (1-alfi)*temp[ii-1].y) / alfi,
			w: (pw[i].w - (1-alfi)*temp[ii-1].w) / alfi,
		}
		temp[jj] = hpole{
			x: (pw[j].x - alfj*temp[jj+1].x) / (1 - alfj),
			y: (pw[j].y - alfj*temp[jj+1].y) / (1 - alfj),
			w: (pw[j].w - alfj*temp[jj+1].w) / (1 - alfj),
		}
		i++
		ii++
		j--
		jj--
	}

	np := append([]hpole(nil), pw...)
	i, j = first, last
	for j-i > 0 {
		np[i] = temp[i-off]
		np[j] = temp[j-off]
		i++
		j--
	}
	fout := (2*r - s - p) / 2
	np = append(np[:fout:fout], np[fout+1:]...)

	nf := append([]float64(nil), flat[:r]...)
	nf = append(nf, flat[r+1:]...)
	return nf, np
}

// rotateSeam moves the periodic seam to distinct knot index seam. The
// geometric curve is unchanged; the domain becomes [k_seam, k_seam+T].
func rotateSeam(b *geom.BSplineCurve, seam int) {
	if seam == 0 {
		return
	}
	m := len(b.Knots)
	period := b.Knots[m-1] - b.Knots[0]

	nk := make([]float64, 0, m)
	nm := make([]int, 0, m)
	nk = append(nk, b.Knots[seam:m-1]...)
	nm = append(nm, b.Mults[seam:m-1]...)
	for i := 0; i <= seam; i++ {
		nk = append(nk, b.Knots[i]+period)
		nm = append(nm, b.Mults[i])
	}
	offset := 0
	for i := 0; i < seam; i++ {
		offset += b.Mults[i]
	}
	np := make([]v3.Vec, 0, len(b.Poles))
	np = append(np, b.Poles[offset:]...)
	np = append(np, b.Poles[:offset]...)
	nw := make([]float64, 0, len(b.Weights))
	nw = append(nw, b.Weights[offset:]...)
	nw = append(nw, b.Weights[:offset]...)

	b.Knots, b.Mults, b.Poles, b.Weights = nk, nm, np, nw
}

// seamTo rotates the seam back to the knot congruent to origin and
// shifts the domain onto it.
func seamTo(b *geom.BSplineCurve, origin float64) {
	m := len(b.Knots)
	period := b.Knots[m-1] - b.Knots[0]
	for i := 0; i < m-1; i++ {
		d := math.Mod(b.Knots[i]-origin, period)
		if math.Abs(d) < 1e-9 || math.Abs(math.Abs(d)-period) < 1e-9 {
			rotateSeam(b, i)
			shift := origin - b.Knots[0]
			for j := range b.Knots {
				b.Knots[j] += shift
			}
			return
		}
	}
}

// ---------------------------------------------------------------------------
// subdivision and opening

// Subdivide splits a non-periodic curve at param into two clamped
// curves sharing the curve point.
func (l *Lib) Subdivide(b *geom.BSplineCurve, param float64) (*geom.BSplineCurve, *geom.BSplineCurve, error) {
	if b.Periodic {
		return nil, nil, fmt.Errorf("subdivide: curve is periodic")
	}
	first, last := b.FirstParameter(), b.LastParameter()
	if param <= first+l.Tol || param >= last-l.Tol {
		return nil, nil, fmt.Errorf("subdivide: parameter %g not interior to [%g, %g]", param, first, last)
	}

	w := b.Clone().(*geom.BSplineCurve)
	cur := 0
	if i := w.KnotIndexAt(param, l.Tol); i >= 0 {
		cur = w.Mults[i]
		param = w.Knots[i]
	}
	if err := l.insertRaw(w, param, w.Degree+1-cur); err != nil {
		return nil, nil, err
	}

	flat := w.FlatKnots()
	q := 0
	for q < len(flat) && flat[q] < param-l.Tol {
		q++
	}
	d := w.Degree

	leftFlat := append([]float64(nil), flat[:q+d+1]...)
	rightFlat := append([]float64(nil), flat[q:]...)
	lk, lm := distinctKnots(leftFlat, l.Tol)
	rk, rm := distinctKnots(rightFlat, l.Tol)

	left, err := geom.NewBSplineCurve(
		append([]v3.Vec(nil), w.Poles[:q]...),
		append([]float64(nil), w.Weights[:q]...),
		lk, lm, d, false)
	if err != nil {
		return nil, nil, fmt.Errorf("subdivide left: %w", err)
	}
	right, err := geom.NewBSplineCurve(
		append([]v3.Vec(nil), w.Poles[q:]...),
		append([]float64(nil), w.Weights[q:]...),
		rk, rm, d, false)
	if err != nil {
		return nil, nil, fmt.Errorf("subdivide right: %w", err)
	}
	return left, right, nil
}

// OpenAt converts a periodic curve to a clamped non-periodic one whose
// ends meet at the curve point of param. The domain becomes one period
// starting at param.
func (l *Lib) OpenAt(b *geom.BSplineCurve, param float64) (*geom.BSplineCurve, error) {
	if !b.Periodic {
		return nil, fmt.Errorf("open: curve is not periodic")
	}
	w := b.Clone().(*geom.BSplineCurve)

	first, last := w.Knots[0], w.Knots[len(w.Knots)-1]
	period := last - first
	for param < first {
		param += period
	}
	for param >= last {
		param -= period
	}
	cur := 0
	if i := w.KnotIndexAt(param, l.Tol); i >= 0 {
		cur = w.Mults[i]
		param = w.Knots[i]
	}
	if cur < w.Degree {
		if err := l.insertRaw(w, param, w.Degree-cur); err != nil {
			return nil, err
		}
	}
	if i := w.KnotIndexAt(param, l.Tol); i > 0 {
		rotateSeam(w, i)
	}

	n, d := len(w.Poles), w.Degree
	poles := make([]v3.Vec, 0, n+1)
	weights := make([]float64, 0, n+1)
	poles = append(poles, w.Poles[n-1])
	poles = append(poles, w.Poles...)
	weights = append(weights, w.Weights[n-1])
	weights = append(weights, w.Weights...)

	mults := append([]int(nil), w.Mults...)
	mults[0] = d + 1
	mults[len(mults)-1] = d + 1

	open, err := geom.NewBSplineCurve(poles, weights,
		append([]float64(nil), w.Knots...), mults, d, false)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return open, nil
}

// ---------------------------------------------------------------------------
// interpolation

// Interpolate fits a clamped B-spline through the points with
// chord-length parametrization and averaged knots. Degree is cubic,
// lowered for very short point runs.
func (l *Lib) Interpolate(points []v3.Vec) (*geom.BSplineCurve, error) {
	n := len(points)
	if n < 2 {
		return nil, fmt.Errorf("interpolate: need at least 2 points, have %d", n)
	}
	p := 3
	if n-1 < p {
		p = n - 1
	}

	// Chord-length parameters.
	ubar := make([]float64, n)
	total := 0.0
	for i := 1; i < n; i++ {
		total += math.Sqrt(dist2(points[i], points[i-1]))
	}
	if total == 0 {
		return nil, fmt.Errorf("interpolate: coincident points")
	}
	acc := 0.0
	for i := 1; i < n; i++ {
		acc += math.Sqrt(dist2(points[i], points[i-1]))
		ubar[i] = acc / total
	}
	ubar[n-1] = 1

	// Averaged knot vector.
	flat := make([]float64, n+p+1)
	for i := 0; i <= p; i++ {
		flat[i] = 0
		flat[n+i] = 1
	}
	for j := 1; j < n-p; j++ {
		sum := 0.0
		for i := j; i < j+p; i++ {
			sum += ubar[i]
		}
		flat[j+p] = sum / float64(p)
	}

	// Dense collocation system, one row per parameter.
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n+2)
		span := flatSpan(flat, p, n, ubar[i])
		bf := basisFuns(flat, span, ubar[i], p)
		for j := 0; j <= p; j++ {
			mat[i][span-p+j] = bf[j]
		}
		mat[i][n] = points[i].X
		mat[i][n+1] = points[i].Y
	}
	if err := gaussSolve(mat, n); err != nil {
		return nil, fmt.Errorf("interpolate: %w", err)
	}

	poles := make([]v3.Vec, n)
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		poles[i] = v3.Vec{X: mat[i][n], Y: mat[i][n+1]}
		weights[i] = 1
	}
	knots, mults := distinctKnots(flat, 1e-12)
	return geom.NewBSplineCurve(poles, weights, knots, mults, p, false)
}

// basisFuns evaluates the p+1 nonzero basis functions at u (Cox-de Boor).
func basisFuns(flat []float64, span int, u float64, p int) []float64 {
	bf := make([]float64, p+1)
	left := make([]float64, p+1)
	right := make([]float64, p+1)
	bf[0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - flat[span+1-j]
		right[j] = flat[span+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			tmp := bf[r] / (right[r+1] + left[j-r])
			bf[r] = saved + right[r+1]*tmp
			saved = left[j-r] * tmp
		}
		bf[j] = saved
	}
	return bf
}

// gaussSolve eliminates in place with partial pivoting; the last two
// columns are right-hand sides.
func gaussSolve(mat [][]float64, n int) error {
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(mat[r][col]) > math.Abs(mat[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(mat[pivot][col]) < 1e-14 {
			return fmt.Errorf("singular collocation matrix at column %d", col)
		}
		mat[col], mat[pivot] = mat[pivot], mat[col]
		for r := col + 1; r < n; r++ {
			f := mat[r][col] / mat[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < n+2; c++ {
				mat[r][c] -= f * mat[col][c]
			}
		}
	}
	for col := n - 1; col >= 0; col-- {
		for rhs := n; rhs <= n+1; rhs++ {
			v := mat[col][rhs]
			for c := col + 1; c < n; c++ {
				v -= mat[col][c] * mat[c][rhs]
			}
			mat[col][rhs] = v / mat[col][col]
		}
	}
	return nil
}

// ConcatC0 chains two clamped curves of equal degree, reparametrizing
// the second to start at the first's end. The junction knot keeps
// multiplicity degree, a C0 joint.
func (l *Lib) ConcatC0(a, b *geom.BSplineCurve) (*geom.BSplineCurve, error) {
	if a.Periodic || b.Periodic {
		return nil, fmt.Errorf("concat: periodic operand")
	}
	if a.Degree != b.Degree {
		return nil, fmt.Errorf("concat: degree mismatch %d vs %d", a.Degree, b.Degree)
	}
	d := a.Degree
	offset := a.LastParameter() - b.FirstParameter()

	knots := append([]float64(nil), a.Knots...)
	mults := append([]int(nil), a.Mults...)
	mults[len(mults)-1] = d
	for i := 1; i < len(b.Knots); i++ {
		knots = append(knots, b.Knots[i]+offset)
		mults = append(mults, b.Mults[i])
	}
	poles := append([]v3.Vec(nil), a.Poles...)
	poles = append(poles, b.Poles[1:]...)
	weights := append([]float64(nil), a.Weights...)
	weights = append(weights, b.Weights[1:]...)

	return geom.NewBSplineCurve(poles, weights, knots, mults, d, false)
}
