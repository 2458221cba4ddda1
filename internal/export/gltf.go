package export

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/map2prop/pkg/brush"
	"github.com/Faultbox/map2prop/pkg/math"
)

const gltfVersion = "2.0"

// neutralRotation is the $origin rotation that leaves studio models facing
// the same way as the source geometry.
const neutralRotation = 270

// primitiveData holds the unrolled vertices of one texture.
type primitiveData struct {
	texture   string
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32
	indices   []uint32
	bounds    math.Bounds
}

// WriteGLTF writes the model as a binary glTF with one primitive and material
// per texture. Scale, rotation and origin are carried by the node matrix,
// which also turns the Z-up source into glTF's Y-up space.
func WriteGLTF(w io.Writer, m *RawModel) error {
	doc, err := BuildGLTF(m)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}

// BuildGLTF assembles the glTF document for the model.
func BuildGLTF(m *RawModel) (*gltf.Document, error) {
	sceneIndex := uint32(0)
	doc := &gltf.Document{
		Asset:   gltf.Asset{Version: gltfVersion, Generator: "map2prop"},
		Scenes:  []*gltf.Scene{{Name: m.Name}},
		Scene:   &sceneIndex,
		Buffers: []*gltf.Buffer{{}},
	}

	buffer := doc.Buffers[0]
	mesh := &gltf.Mesh{Name: m.Name}

	for _, prim := range groupPrimitives(m) {
		materialIndex := uint32(len(doc.Materials))
		doc.Materials = append(doc.Materials, material(prim.texture))

		var views [4]uint32
		for i, data := range []interface{}{prim.indices, prim.positions, prim.normals, prim.uvs} {
			view, err := appendView(doc, buffer, data)
			if err != nil {
				return nil, fmt.Errorf("texture %s: %w", prim.texture, err)
			}
			views[i] = view
		}
		indices, positions, normals, uvs := views[0], views[1], views[2], views[3]

		count := uint32(len(prim.positions))
		b := prim.bounds
		attributes := gltf.Attribute{
			"POSITION": appendAccessor(doc, &gltf.Accessor{
				BufferView:    &positions,
				ComponentType: gltf.ComponentFloat,
				Type:          gltf.AccessorVec3,
				Count:         count,
				Min:           []float32{float32(b.Min.X), float32(b.Min.Y), float32(b.Min.Z)},
				Max:           []float32{float32(b.Max.X), float32(b.Max.Y), float32(b.Max.Z)},
			}),
			"NORMAL": appendAccessor(doc, &gltf.Accessor{
				BufferView:    &normals,
				ComponentType: gltf.ComponentFloat,
				Type:          gltf.AccessorVec3,
				Count:         count,
			}),
			"TEXCOORD_0": appendAccessor(doc, &gltf.Accessor{
				BufferView:    &uvs,
				ComponentType: gltf.ComponentFloat,
				Type:          gltf.AccessorVec2,
				Count:         count,
			}),
		}
		indexAccessor := appendAccessor(doc, &gltf.Accessor{
			BufferView:    &indices,
			ComponentType: gltf.ComponentUint,
			Type:          gltf.AccessorScalar,
			Count:         uint32(len(prim.indices)),
		})

		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Attributes: attributes,
			Indices:    &indexAccessor,
			Material:   &materialIndex,
			Mode:       gltf.PrimitiveTriangles,
		})
	}

	meshIndex := uint32(len(doc.Meshes))
	doc.Meshes = append(doc.Meshes, mesh)

	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:   m.Name,
		Mesh:   &meshIndex,
		Matrix: toMatrix(ModelMatrix(m)),
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

// ModelMatrix returns the transform from source space to glTF space: move the
// origin to zero, apply the extra yaw and scale, then rotate Z-up to Y-up.
func ModelMatrix(m *RawModel) mgl64.Mat4 {
	scale := m.Scale
	if scale == 0 {
		scale = 1
	}
	yaw := mgl64.DegToRad(m.Rotation - neutralRotation)

	return mgl64.HomogRotate3DX(-mgl64.DegToRad(90)).
		Mul4(mgl64.Scale3D(scale, scale, scale)).
		Mul4(mgl64.HomogRotate3DZ(yaw)).
		Mul4(mgl64.Translate3D(-m.Offset.X, -m.Offset.Y, -m.Offset.Z))
}

func toMatrix(m mgl64.Mat4) [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

func groupPrimitives(m *RawModel) []*primitiveData {
	var order []*primitiveData
	byTexture := make(map[string]*primitiveData)

	for i := range m.Polygons {
		poly := &m.Polygons[i]
		prim := byTexture[poly.Texture]
		if prim == nil {
			prim = &primitiveData{texture: poly.Texture}
			if len(poly.Vertices) > 0 {
				p := poly.Vertices[0].Position
				prim.bounds = math.Bounds{Min: p, Max: p}
			}
			byTexture[poly.Texture] = prim
			order = append(order, prim)
		}

		base := uint32(len(prim.positions))
		for _, v := range poly.Vertices {
			prim.positions = append(prim.positions, vec3f(v.Position))
			prim.normals = append(prim.normals, vec3f(v.Normal))
			// glTF images start at the top edge.
			prim.uvs = append(prim.uvs, [2]float32{float32(v.UV.X), float32(-v.UV.Y)})
			prim.bounds = prim.bounds.Extend(v.Position)
		}
		for k := 1; k+1 < len(poly.Vertices); k++ {
			prim.indices = append(prim.indices, base, base+uint32(k), base+uint32(k+1))
		}
	}
	return order
}

func material(texture string) *gltf.Material {
	mat := &gltf.Material{
		Name: texture,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
		},
	}
	if brush.IsMaskedTexture(texture) {
		mat.AlphaMode = gltf.AlphaMask
	}
	return mat
}

// appendView encodes data at the end of buffer and adds a view over it.
func appendView(doc *gltf.Document, buffer *gltf.Buffer, data interface{}) (uint32, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
		return 0, fmt.Errorf("encode buffer view: %w", err)
	}

	index := uint32(len(doc.BufferViews))
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: buffer.ByteLength,
		ByteLength: uint32(buf.Len()),
	})
	buffer.Data = append(buffer.Data, buf.Bytes()...)
	buffer.ByteLength += uint32(buf.Len())
	return index, nil
}

func appendAccessor(doc *gltf.Document, acc *gltf.Accessor) uint32 {
	index := uint32(len(doc.Accessors))
	doc.Accessors = append(doc.Accessors, acc)
	return index
}

func vec3f(v math.Vec3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
