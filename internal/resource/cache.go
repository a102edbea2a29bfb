package resource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mini-engine/internal/asset"
	"mini-engine/internal/graphics"
	"mini-engine/internal/graphics/device"
	"mini-engine/internal/loader"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotLoaded is returned when a resource could not be produced
var ErrNotLoaded = errors.New("resource: not loaded")

// ModelCallback receives an asynchronously loaded model on the main thread
type ModelCallback func(model *GpuModel, err error)

// Cache owns loaded models, materials and shaders keyed by path.
// Pointers it returns are borrowed; holders that outlive an Evict must Retain them.
// There is no automatic eviction.
type Cache struct {
	dev  device.Device
	log  *zap.Logger
	root string
	pool *loader.Pool

	models    map[string]*GpuModel
	materials map[string]*Material
	shaders   map[string]*graphics.Shader
	pending   map[string][]ModelCallback
	backlog   []loader.Job

	defaultMaterial *Material
}

// NewCache creates a cache rooted at root. pool may be nil, in which case
// async loads decode synchronously on the next Poll.
func NewCache(dev device.Device, log *zap.Logger, root string, pool *loader.Pool) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		dev:       dev,
		log:       log,
		root:      root,
		pool:      pool,
		models:    make(map[string]*GpuModel),
		materials: make(map[string]*Material),
		shaders:   make(map[string]*graphics.Shader),
		pending:   make(map[string][]ModelCallback),
	}
}

func (c *Cache) resolve(path string) string {
	if filepath.IsAbs(path) || c.root == "" {
		return path
	}
	return filepath.Join(c.root, path)
}

// Model returns the model at path, loading and uploading it on first use.
func (c *Cache) Model(path string) (*GpuModel, error) {
	if m, ok := c.models[path]; ok {
		return m, nil
	}
	data, err := asset.LoadFile(c.resolve(path))
	if err != nil {
		c.log.Warn("model load failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	return c.AddModel(path, data), nil
}

// AddModel uploads a model built in memory and caches it under path.
// An existing entry for path is returned unchanged.
func (c *Cache) AddModel(path string, m *asset.Model) *GpuModel {
	if existing, ok := c.models[path]; ok {
		return existing
	}
	g := NewGpuModel(c.dev, path, m)
	c.models[path] = g
	c.log.Debug("model uploaded", zap.String("path", path), zap.Int("meshes", len(g.meshes)))
	return g
}

// LoadModelAsync decodes the model on the loader pool. cb runs inside Poll on the
// caller's thread, or immediately if the model is already cached.
func (c *Cache) LoadModelAsync(path string, cb ModelCallback) {
	if m, ok := c.models[path]; ok {
		if cb != nil {
			cb(m, nil)
		}
		return
	}
	if waiting, ok := c.pending[path]; ok {
		c.pending[path] = append(waiting, cb)
		return
	}
	c.pending[path] = []ModelCallback{cb}

	full := c.resolve(path)
	job := loader.Job{
		Path: path,
		Decode: func(ctx context.Context) (any, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return asset.LoadFile(full)
		},
		Done: func(v any, err error) { c.finishModel(path, v, err) },
	}
	c.backlog = append(c.backlog, job)
}

func (c *Cache) finishModel(path string, v any, err error) {
	waiting := c.pending[path]
	delete(c.pending, path)

	var model *GpuModel
	if err == nil {
		model = c.AddModel(path, v.(*asset.Model))
	} else {
		c.log.Warn("async model load failed", zap.String("path", path), zap.Error(err))
		err = fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	for _, cb := range waiting {
		if cb != nil {
			cb(model, err)
		}
	}
}

// Poll submits queued loads and delivers finished ones. Call once per frame on the main thread.
func (c *Cache) Poll() int {
	delivered := 0
	remaining := c.backlog[:0]
	for _, job := range c.backlog {
		if c.pool == nil {
			v, err := job.Decode(context.Background())
			job.Done(v, err)
			delivered++
			continue
		}
		if !c.pool.Submit(job) {
			remaining = append(remaining, job)
		}
	}
	c.backlog = remaining
	if c.pool != nil {
		delivered += c.pool.Drain()
	}
	return delivered
}

// Pending returns the number of model loads not yet delivered
func (c *Cache) Pending() int {
	return len(c.pending)
}

// Preload decodes all paths concurrently and uploads them on the calling thread.
// Already cached paths are skipped. The first decode error is returned.
func (c *Cache) Preload(ctx context.Context, paths []string) error {
	var todo []string
	for _, p := range paths {
		if _, ok := c.models[p]; !ok {
			todo = append(todo, p)
		}
	}
	decoded := make([]*asset.Model, len(todo))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range todo {
		full := c.resolve(p)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := asset.LoadFile(full)
			if err != nil {
				return err
			}
			decoded[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("preload: %w", err)
	}
	for i, p := range todo {
		c.AddModel(p, decoded[i])
	}
	return nil
}

// Shader returns a builtin shader program by name
func (c *Cache) Shader(name string) (*graphics.Shader, error) {
	key := "builtin:" + name
	if s, ok := c.shaders[key]; ok {
		return s, nil
	}
	s, err := graphics.NewBuiltinShader(c.dev, name)
	if err != nil {
		return nil, err
	}
	c.shaders[key] = s
	return s, nil
}

// ShaderFiles returns a program compiled from source files under the cache root
func (c *Cache) ShaderFiles(vertexPath, fragmentPath string) (*graphics.Shader, error) {
	key := vertexPath + "|" + fragmentPath
	if s, ok := c.shaders[key]; ok {
		return s, nil
	}
	s, err := graphics.NewShaderFromFiles(c.dev, c.resolve(vertexPath), c.resolve(fragmentPath))
	if err != nil {
		return nil, err
	}
	c.shaders[key] = s
	return s, nil
}

// Material loads a YAML material descriptor. A shader that fails to compile
// leaves the material without a shader, which draws fall back from.
func (c *Cache) Material(path string) (*Material, error) {
	if m, ok := c.materials[path]; ok {
		return m, nil
	}
	data, err := os.ReadFile(c.resolve(path))
	if err != nil {
		c.log.Warn("material load failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	mf, err := ParseMaterialFile(data)
	if err != nil {
		c.log.Warn("material parse failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrNotLoaded, path, err)
	}

	var shader *graphics.Shader
	if mf.Shader != "" {
		shader, err = c.Shader(mf.Shader)
	} else {
		shader, err = c.ShaderFiles(mf.Vertex, mf.Fragment)
	}
	if err != nil {
		c.log.Warn("material shader unavailable", zap.String("path", path), zap.Error(err))
	}

	m := NewMaterial(path, shader)
	mf.Apply(m)
	c.materials[path] = m
	return m, nil
}

// AddMaterial caches a material built in code
func (c *Cache) AddMaterial(m *Material) *Material {
	if existing, ok := c.materials[m.path]; ok {
		return existing
	}
	c.materials[m.path] = m
	return m
}

// DefaultMaterial returns the fallback material using the builtin standard shader
func (c *Cache) DefaultMaterial() *Material {
	if c.defaultMaterial != nil {
		return c.defaultMaterial
	}
	shader, err := c.Shader(graphics.ShaderStandard)
	if err != nil {
		c.log.Warn("default shader unavailable", zap.Error(err))
	}
	m := NewMaterial("builtin:default", shader)
	m.Uniforms.Albedo = mgl32.Vec4{0.8, 0.8, 0.8, 1}
	c.defaultMaterial = m
	return m
}

// Evict drops the cache's reference to the model at path.
// GPU buffers stay alive while other holders retain it.
func (c *Cache) Evict(path string) bool {
	m, ok := c.models[path]
	if !ok {
		return false
	}
	delete(c.models, path)
	m.Release()
	return true
}

// Purge evicts every model and forgets materials
func (c *Cache) Purge() {
	for path := range c.models {
		c.Evict(path)
	}
	c.materials = make(map[string]*Material)
}

// Dispose purges and deletes all shader programs
func (c *Cache) Dispose() {
	c.Purge()
	for k, s := range c.shaders {
		s.Dispose()
		delete(c.shaders, k)
	}
	c.defaultMaterial = nil
}
