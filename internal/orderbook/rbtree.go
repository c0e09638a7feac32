package orderbook

import "github.com/nathanyu/limitbook/internal/domain"

// Red-black tree keyed by price, holding one *PriceLevel per node.
//
// The side book needs an ordered map from price to price level with O(1)
// access to the aggressive end (best bid or best ask) and O(log n)
// insert/delete as levels are created and torn down. A red-black tree gives
// that without the O(n) linear scan a plain map forces on every price
// change.
//
// Properties:
// 1. Every node is red or black.
// 2. The root is black.
// 3. Red nodes never have red children.
// 4. Every root-to-nil path has the same number of black nodes.

type rbColor bool

const (
	rbRed   rbColor = true
	rbBlack rbColor = false
)

type rbNode struct {
	price  domain.Price
	level  *PriceLevel
	color  rbColor
	left   *rbNode
	right  *rbNode
	parent *rbNode
}

// RBTree is a red-black tree of price levels for one side of the book. When
// descending is true, Min returns the maximum-keyed level (best bid); when
// false, Min returns the minimum-keyed level (best ask). ForEach walks in
// the same "most aggressive first" order as Min.
type RBTree struct {
	root       *rbNode
	size       int
	minNode    *rbNode
	maxNode    *rbNode
	descending bool
}

// NewRBTree creates an empty tree ordered ascending, or descending if
// descending is true.
func NewRBTree(descending bool) *RBTree {
	return &RBTree{descending: descending}
}

// Size returns the number of levels in the tree.
func (t *RBTree) Size() int { return t.size }

// IsEmpty reports whether the tree has no levels.
func (t *RBTree) IsEmpty() bool { return t.size == 0 }

// Min returns the aggressive-end level, or nil if the tree is empty.
func (t *RBTree) Min() *PriceLevel {
	node := t.minNode
	if t.descending {
		node = t.maxNode
	}
	if node == nil {
		return nil
	}
	return node.level
}

// Get retrieves the level at price, or nil.
func (t *RBTree) Get(price domain.Price) *PriceLevel {
	node := t.search(price)
	if node == nil {
		return nil
	}
	return node.level
}

// Insert adds a level keyed by level.Price. Inserting at a price that
// already exists replaces the stored level.
func (t *RBTree) Insert(level *PriceLevel) {
	newNode := &rbNode{price: level.Price, level: level, color: rbRed}

	if t.root == nil {
		newNode.color = rbBlack
		t.root = newNode
		t.minNode = newNode
		t.maxNode = newNode
		t.size = 1
		return
	}

	var parent *rbNode
	current := t.root
	for current != nil {
		parent = current
		switch {
		case level.Price < current.price:
			current = current.left
		case level.Price > current.price:
			current = current.right
		default:
			current.level = level
			return
		}
	}

	newNode.parent = parent
	if level.Price < parent.price {
		parent.left = newNode
	} else {
		parent.right = newNode
	}
	t.size++

	if level.Price < t.minNode.price {
		t.minNode = newNode
	}
	if level.Price > t.maxNode.price {
		t.maxNode = newNode
	}

	t.insertFixup(newNode)
}

// Delete removes the level at price, if any.
func (t *RBTree) Delete(price domain.Price) {
	node := t.search(price)
	if node == nil {
		return
	}
	t.size--

	if node == t.minNode {
		t.minNode = t.successor(node)
	}
	if node == t.maxNode {
		t.maxNode = t.predecessor(node)
	}

	t.deleteNode(node)
}

// ForEach walks levels in aggressive-first order until fn returns false.
func (t *RBTree) ForEach(fn func(*PriceLevel) bool) {
	if t.descending {
		t.reverseInOrder(t.root, fn)
	} else {
		t.inOrder(t.root, fn)
	}
}

func (t *RBTree) search(price domain.Price) *rbNode {
	current := t.root
	for current != nil {
		switch {
		case price < current.price:
			current = current.left
		case price > current.price:
			current = current.right
		default:
			return current
		}
	}
	return nil
}

func (t *RBTree) inOrder(node *rbNode, fn func(*PriceLevel) bool) bool {
	if node == nil {
		return true
	}
	if !t.inOrder(node.left, fn) {
		return false
	}
	if !fn(node.level) {
		return false
	}
	return t.inOrder(node.right, fn)
}

func (t *RBTree) reverseInOrder(node *rbNode, fn func(*PriceLevel) bool) bool {
	if node == nil {
		return true
	}
	if !t.reverseInOrder(node.right, fn) {
		return false
	}
	if !fn(node.level) {
		return false
	}
	return t.reverseInOrder(node.left, fn)
}

func (t *RBTree) successor(node *rbNode) *rbNode {
	if node.right != nil {
		current := node.right
		for current.left != nil {
			current = current.left
		}
		return current
	}
	parent := node.parent
	for parent != nil && node == parent.right {
		node = parent
		parent = parent.parent
	}
	return parent
}

func (t *RBTree) predecessor(node *rbNode) *rbNode {
	if node.left != nil {
		current := node.left
		for current.right != nil {
			current = current.right
		}
		return current
	}
	parent := node.parent
	for parent != nil && node == parent.left {
		node = parent
		parent = parent.parent
	}
	return parent
}

func (t *RBTree) rotateLeft(x *rbNode) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == nil {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *RBTree) rotateRight(x *rbNode) {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent == nil {
		t.root = y
	} else if x == x.parent.right {
		x.parent.right = y
	} else {
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

func (t *RBTree) insertFixup(z *rbNode) {
	for z.parent != nil && z.parent.color == rbRed {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y != nil && y.color == rbRed {
				z.parent.color = rbBlack
				y.color = rbBlack
				z.parent.parent.color = rbRed
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.rotateLeft(z)
				}
				z.parent.color = rbBlack
				z.parent.parent.color = rbRed
				t.rotateRight(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y != nil && y.color == rbRed {
				z.parent.color = rbBlack
				y.color = rbBlack
				z.parent.parent.color = rbRed
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rotateRight(z)
				}
				z.parent.color = rbBlack
				z.parent.parent.color = rbRed
				t.rotateLeft(z.parent.parent)
			}
		}
	}
	t.root.color = rbBlack
}

func (t *RBTree) transplant(u, v *rbNode) {
	if u.parent == nil {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	if v != nil {
		v.parent = u.parent
	}
}

func (t *RBTree) deleteNode(z *rbNode) {
	var x, xParent *rbNode
	y := z
	yOriginalColor := y.color

	switch {
	case z.left == nil:
		x = z.right
		xParent = z.parent
		t.transplant(z, z.right)
	case z.right == nil:
		x = z.left
		xParent = z.parent
		t.transplant(z, z.left)
	default:
		y = z.right
		for y.left != nil {
			y = y.left
		}
		yOriginalColor = y.color
		x = y.right
		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if yOriginalColor == rbBlack {
		t.deleteFixup(x, xParent)
	}
}

func (t *RBTree) deleteFixup(x *rbNode, xParent *rbNode) {
	for x != t.root && (x == nil || x.color == rbBlack) {
		if x == xParent.left {
			w := xParent.right
			if w != nil && w.color == rbRed {
				w.color = rbBlack
				xParent.color = rbRed
				t.rotateLeft(xParent)
				w = xParent.right
			}
			if w == nil || ((w.left == nil || w.left.color == rbBlack) && (w.right == nil || w.right.color == rbBlack)) {
				if w != nil {
					w.color = rbRed
				}
				x = xParent
				xParent = x.parent
			} else {
				if w.right == nil || w.right.color == rbBlack {
					if w.left != nil {
						w.left.color = rbBlack
					}
					w.color = rbRed
					t.rotateRight(w)
					w = xParent.right
				}
				w.color = xParent.color
				xParent.color = rbBlack
				if w.right != nil {
					w.right.color = rbBlack
				}
				t.rotateLeft(xParent)
				x = t.root
			}
		} else {
			w := xParent.left
			if w != nil && w.color == rbRed {
				w.color = rbBlack
				xParent.color = rbRed
				t.rotateRight(xParent)
				w = xParent.left
			}
			if w == nil || ((w.right == nil || w.right.color == rbBlack) && (w.left == nil || w.left.color == rbBlack)) {
				if w != nil {
					w.color = rbRed
				}
				x = xParent
				xParent = x.parent
			} else {
				if w.left == nil || w.left.color == rbBlack {
					if w.right != nil {
						w.right.color = rbBlack
					}
					w.color = rbRed
					t.rotateLeft(w)
					w = xParent.left
				}
				w.color = xParent.color
				xParent.color = rbBlack
				if w.left != nil {
					w.left.color = rbBlack
				}
				t.rotateRight(xParent)
				x = t.root
			}
		}
	}
	if x != nil {
		x.color = rbBlack
	}
}
